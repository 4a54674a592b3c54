package transfer

import "github.com/golang-jwt/jwt/v5"

type MediaInline struct {
	Mime     string `json:"mime"`
	Encoding string `json:"encoding"`
	Content  string `json:"content"`
}

type DraftCreation struct {
	Caption      string       `json:"caption"`
	MediaURL     string       `json:"media_url"`
	MediaType    string       `json:"media_type"`
	Platforms    []string     `json:"platforms"`
	Source       string       `json:"source"`
	Notes        string       `json:"notes"`
	MediaInline  *MediaInline `json:"media_inline"`
	MediaDataURL string       `json:"media_data_url"`
}

type ApproveRequest struct {
	PostID      string   `json:"post_id"`
	PublishNow  bool     `json:"publish_now"`
	Channels    []string `json:"channels"`
	ScheduledAt string   `json:"scheduled_at"`
}

// ChannelResult is the per-channel outcome of a publish request. Exactly one
// of ExternalID and Error is set.
type ChannelResult struct {
	OK         bool   `json:"ok"`
	ExternalID string `json:"external_id,omitempty"`
	Error      string `json:"error,omitempty"`
}

type ApproveResult struct {
	OK        bool                     `json:"ok"`
	PostID    string                   `json:"post_id"`
	Approved  bool                     `json:"approved"`
	Published map[string]ChannelResult `json:"published"`
}

type SchedulerResult struct {
	OK         bool   `json:"ok"`
	Channel    string `json:"channel,omitempty"`
	PostID     string `json:"post_id,omitempty"`
	ExternalID string `json:"external_id,omitempty"`
	Reason     string `json:"reason,omitempty"`
}

// ApprovalClaims back the signed one-click approval links.
type ApprovalClaims struct {
	PostID string `json:"post_id"`
	jwt.RegisteredClaims
}
