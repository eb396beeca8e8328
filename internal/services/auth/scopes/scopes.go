// Package scopes defines the permission strings accepted from machine
// tokens and the one-level expansion of aggregate scopes
package scopes

import "strings"

// Concrete scopes
const (
	CreateAppeal = "create:appeal"
	ReadAppeal   = "read:appeal"
	UpdateAppeal = "update:appeal"
	DeleteAppeal = "delete:appeal"

	CreateAppealResponse = "create:appeal-response"
	UpdateAppealResponse = "update:appeal-response"

	CreateReview = "create:review"
	ReadReview   = "read:review"
	UpdateReview = "update:review"
	DeleteReview = "delete:review"

	ReadSubmission   = "read:submission"
	CreateSubmission = "create:submission"
	UpdateSubmission = "update:submission"
	DeleteSubmission = "delete:submission"

	CreateScorecard = "create:scorecard"
	ReadScorecard   = "read:scorecard"
	UpdateScorecard = "update:scorecard"
	DeleteScorecard = "delete:scorecard"
)

// Aggregate scopes
const (
	AllAppeal     = "all:appeal"
	AllReview     = "all:review"
	AllSubmission = "all:submission"
	AllScorecard  = "all:scorecard"
)

// Table is the fixed aggregate to concrete mapping, loaded once and
// immutable thereafter. Mapped scopes are already concrete so expansion
// never recurses
var Table = map[string][]string{
	AllAppeal: {
		CreateAppeal, ReadAppeal, UpdateAppeal, DeleteAppeal,
		CreateAppealResponse, UpdateAppealResponse,
	},
	AllReview: {
		CreateReview, ReadReview, UpdateReview, DeleteReview,
	},
	AllSubmission: {
		CreateSubmission, ReadSubmission, UpdateSubmission, DeleteSubmission,
	},
	AllScorecard: {
		CreateScorecard, ReadScorecard, UpdateScorecard, DeleteScorecard,
	},
}

// Expand returns every input scope plus, for each aggregate input, its
// mapped concrete scopes. One level only; unknown scopes pass through.
// Order is stable: inputs first, then expansions in input order.
// Duplicates are dropped
func Expand(raw []string) []string {
	if len(raw) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(raw))
	out := make([]string, 0, len(raw))

	add := func(s string) {
		if s == "" {
			return
		}
		if _, ok := seen[s]; ok {
			return
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}

	for _, s := range raw {
		add(strings.TrimSpace(s))
	}
	for _, s := range raw {
		for _, c := range Table[strings.TrimSpace(s)] {
			add(c)
		}
	}
	return out
}

// Split breaks a space-delimited scope claim into raw scope strings
func Split(claim string) []string {
	return strings.Fields(claim)
}
