package models

// Channel is one playable catalog entry, optionally carrying ClearKey DRM credentials.
type Channel struct {
	ID       int64   `json:"id,omitempty"`
	Name     string  `json:"name"`
	Category *string `json:"category,omitempty"`
	Type     string  `json:"type"`
	URL      string  `json:"url"`
	DRMKeyID *string `json:"drm_clearkey_keyId,omitempty"`
	DRMKey   *string `json:"drm_clearkey_key,omitempty"`
}

// CategoryName returns the category, or "" when it is absent.
func (c *Channel) CategoryName() string {
	if c.Category == nil {
		return ""
	}
	return *c.Category
}

// ClearKey returns the key id and key when both are present and non-empty.
func (c *Channel) ClearKey() (keyID, key string, ok bool) {
	if c.DRMKeyID == nil || c.DRMKey == nil || *c.DRMKeyID == "" || *c.DRMKey == "" {
		return "", "", false
	}
	return *c.DRMKeyID, *c.DRMKey, true
}
