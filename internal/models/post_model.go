package models

import "time"

// Channel is a publish target. Only the two Meta surfaces are supported.
type Channel string

const (
	ChannelInstagram Channel = "instagram"
	ChannelFacebook  Channel = "facebook"
)

func ParseChannel(s string) (Channel, bool) {
	switch Channel(s) {
	case ChannelInstagram:
		return ChannelInstagram, true
	case ChannelFacebook:
		return ChannelFacebook, true
	}
	return "", false
}

// Other returns the opposite channel of the pair.
func (c Channel) Other() Channel {
	if c == ChannelInstagram {
		return ChannelFacebook
	}
	return ChannelInstagram
}

type MediaType string

const (
	MediaTypeImage MediaType = "image"
	MediaTypeVideo MediaType = "video"
	MediaTypeReel  MediaType = "reel"
	MediaTypeText  MediaType = "text"
)

func ParseMediaType(s string) (MediaType, bool) {
	switch MediaType(s) {
	case MediaTypeImage, MediaTypeVideo, MediaTypeReel, MediaTypeText:
		return MediaType(s), true
	}
	return "", false
}

type Slot string

const (
	SlotAM Slot = "am"
	SlotPM Slot = "pm"
)

func ParseSlot(s string) (Slot, bool) {
	switch Slot(s) {
	case SlotAM, SlotPM:
		return Slot(s), true
	}
	return "", false
}

const (
	PostStatusPending  = "pending"
	PostStatusApproved = "approved"
)

type HistoryEvent struct {
	TS    time.Time `json:"ts"`
	Event string    `json:"event"`
}

// Post is the single persisted entity of the queue document.
// PostedAt doubles as the posted-channels set: a key's presence means the
// channel has been used, its value is the publish time feeding the cooldown.
type Post struct {
	ID         string                `json:"id"`
	Status     string                `json:"status"`
	Caption    string                `json:"caption"`
	MediaURL   string                `json:"media_url,omitempty"`
	MediaType  MediaType             `json:"media_type"`
	Platforms  []Channel             `json:"platforms"`
	Source     string                `json:"source"`
	Notes      string                `json:"notes"`
	CreatedAt  time.Time             `json:"created_at"`
	ApprovedAt *time.Time            `json:"approved_at,omitempty"`
	PostedAt   map[Channel]time.Time `json:"posted_at"`
	History    []HistoryEvent        `json:"history"`
}

func (p *Post) HasPlatform(c Channel) bool {
	for _, ch := range p.Platforms {
		if ch == c {
			return true
		}
	}
	return false
}

func (p *Post) PostedOn(c Channel) bool {
	_, ok := p.PostedAt[c]
	return ok
}

// LastPostedAt returns the most recent publish time across all channels.
func (p *Post) LastPostedAt() (time.Time, bool) {
	var last time.Time
	for _, ts := range p.PostedAt {
		if ts.After(last) {
			last = ts
		}
	}
	return last, !last.IsZero()
}

// Eligible reports whether p may be published on c: approved, declared for
// the channel, and not yet posted there. The guard is monotonic because
// PostedAt only ever grows.
func Eligible(p *Post, c Channel) bool {
	return p.Status == PostStatusApproved && p.HasPlatform(c) && !p.PostedOn(c)
}
