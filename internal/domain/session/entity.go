// internal/domain/session/entity.go
package session

import (
	"errors"
	"strings"
)

var (
	ErrInvalidTab = errors.New("session: invalid tab")
	ErrEmptyKey   = errors.New("session: empty image key")
)

// Tab is the view the collection page shows.
type Tab string

const (
	TabAvailable Tab = "available"
	TabOwned     Tab = "owned"
)

// ParseTab accepts "available" or "owned" (case-insensitive).
func ParseTab(s string) (Tab, error) {
	switch Tab(strings.ToLower(strings.TrimSpace(s))) {
	case TabAvailable:
		return TabAvailable, nil
	case TabOwned:
		return TabOwned, nil
	}
	return "", ErrInvalidTab
}

// ViewState is the per-session presentation state.
// Image errors only ever go from unset to set.
type ViewState struct {
	ID          string          `json:"id"`
	Wallet      string          `json:"wallet,omitempty"`
	ActiveTab   Tab             `json:"activeTab"`
	ImageErrors map[string]bool `json:"imageErrors"`
}

func newViewState(id string) *ViewState {
	return &ViewState{
		ID:          id,
		ActiveTab:   TabAvailable,
		ImageErrors: map[string]bool{},
	}
}

// HasImageError reports whether the image under key failed to load before.
func (v *ViewState) HasImageError(key string) bool {
	return v.ImageErrors[key]
}

func (v *ViewState) clone() ViewState {
	errs := make(map[string]bool, len(v.ImageErrors))
	for k, b := range v.ImageErrors {
		errs[k] = b
	}
	return ViewState{ID: v.ID, Wallet: v.Wallet, ActiveTab: v.ActiveTab, ImageErrors: errs}
}
