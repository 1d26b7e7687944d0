package service

import "autopost/internal/models"

// ComposeParams selects what kind of draft to generate.
type ComposeParams struct {
	ContentType models.ContentType `json:"content_type"`
}

// PublishParams is a manual publish request. Text is posted as-is to the
// selected platforms, bypassing generation and the calendar.
type PublishParams struct {
	Text          string `json:"text"`
	ImageURL      string `json:"image_url,omitempty"`
	PostToX       bool   `json:"post_to_x"`
	PostToThreads bool   `json:"post_to_threads"`
}

// DeliverSpec is the dispatcher-level description of one delivery fan-out.
type DeliverSpec struct {
	Text        string
	ImageURL    string
	ToX         bool
	ToThreads   bool
	ContentType models.ContentType
	Manual      bool
}
