package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeEntryType(t *testing.T) {
	cases := []struct {
		in   string
		want EntryType
	}{
		{"manual", EntryManual},
		{"Manual", EntryManual},
		{"MANUAL", EntryManual},
		{"  manual  ", EntryManual},
		{"qr", EntryQR},
		{"QR", EntryQR},
		{"QR Code", EntryQR},
		{"qr code", EntryQR},
		{"QRCode", EntryQR},
		{"qrcode", EntryQR},
	}
	for _, tc := range cases {
		got, ok := NormalizeEntryType(tc.in)
		assert.True(t, ok, "expected %q to normalize", tc.in)
		assert.Equal(t, tc.want, got, "input %q", tc.in)
	}
}

func TestNormalizeEntryTypeRejectsUnknown(t *testing.T) {
	for _, in := range []string{"Email", "email", "", "walk-in", "qr-code"} {
		_, ok := NormalizeEntryType(in)
		assert.False(t, ok, "expected %q to be rejected", in)
	}
}
