// package tracker implements the playback state tracking engine: field-level
// change detection between successive snapshots, the poll scheduler that
// drives it, and the inbound remote-control commands.
package tracker

import (
	"math/bits"
	"strconv"
	"strings"

	"github.com/RubberDuckShobe/NeosSpotifyStatus/internal/playback"
)

// Field is a bitmask flag identifying one observable playback field.
// The outbound wire code for a field is 1 + log2(flag); code 0 is the
// clear-all signal and has no flag.
type Field uint16

const (
	FieldPlayable Field = 1 << iota
	FieldCreator
	FieldCover
	FieldGrouping
	FieldProgress
	FieldDuration
	FieldIsPlaying
	FieldRepeatState
	FieldIsShuffled
)

// AllFields covers every observable field.
const AllFields = FieldPlayable | FieldCreator | FieldCover | FieldGrouping |
	FieldProgress | FieldDuration | FieldIsPlaying | FieldRepeatState | FieldIsShuffled

// ClearMessage is the wire message that tells subscribers to clear all state.
const ClearMessage = "0"

// Code returns the outbound wire code for the field.
func (f Field) Code() int {
	return 1 + bits.TrailingZeros16(uint16(f))
}

// Notification is one field-change event produced by a diff pass, carrying
// the field's value already rendered as wire text.
type Notification struct {
	Field Field
	Value string
}

// Encode renders the notification as an outbound wire message.
func (n Notification) Encode() string {
	return strconv.Itoa(n.Field.Code()) + n.Value
}

// encodeBool renders a boolean as invariant "True"/"False" text.
func encodeBool(v bool) string {
	if v {
		return "True"
	}
	return "False"
}

// encodeInt renders an integer as decimal text.
func encodeInt(v int) string {
	return strconv.Itoa(v)
}

// encodeResources renders a resource list as comma-joined display names.
func encodeResources(resources []playback.Resource) string {
	names := make([]string, len(resources))
	for i, res := range resources {
		names[i] = res.Name
	}
	return strings.Join(names, ", ")
}
