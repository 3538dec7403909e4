// Package dto はflagsフィーチャーのリクエスト・レスポンス形式を定義します。
package dto

import "kurukshetra_backend/internal/feature/flags/usecase"

// SubmitReq is the body of POST /api/flags/submit.
type SubmitReq struct {
	Slug string `json:"slug" binding:"required"`
	Flag string `json:"flag" binding:"required"`
}

// SubmitResp is returned for an accepted flag.
type SubmitResp struct {
	Slug   string `json:"slug"`
	Flag   string `json:"flag"`
	Points int    `json:"points"`
}

// ChallengeResp is one catalog entry. Found is omitted from the public catalog.
type ChallengeResp struct {
	Slug   string `json:"slug"`
	Title  string `json:"title"`
	Points int    `json:"points"`
	Found  *bool  `json:"found,omitempty"`
}

// ProgressResp is the authenticated user's progress.
type ProgressResp struct {
	Challenges  []ChallengeResp `json:"challenges"`
	FoundCount  int             `json:"foundCount"`
	TotalPoints int             `json:"totalPoints"`
}

// FromProgress converts a usecase.Progress.
func FromProgress(p *usecase.Progress) ProgressResp {
	out := ProgressResp{Challenges: make([]ChallengeResp, 0, len(p.Challenges)), FoundCount: p.FoundCount, TotalPoints: p.TotalPoints}
	for _, c := range p.Challenges {
		found := c.Found
		out.Challenges = append(out.Challenges, ChallengeResp{Slug: c.Slug, Title: c.Title, Points: c.Points, Found: &found})
	}
	return out
}

// FromCatalog converts the public catalog.
func FromCatalog(list []usecase.ChallengeStatus) []ChallengeResp {
	out := make([]ChallengeResp, 0, len(list))
	for _, c := range list {
		out = append(out, ChallengeResp{Slug: c.Slug, Title: c.Title, Points: c.Points})
	}
	return out
}
