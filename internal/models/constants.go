package models

// Channel type constants. Type is free-form; only ChannelTypeMPD changes rendering.
const (
	ChannelTypeMPD    = "mpd"
	ChannelTypeHLS    = "m3u8"
	ChannelTypeStream = "stream"
)
