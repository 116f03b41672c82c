package rules

import (
	"testing"
	"time"
)

func TestParseClockTime(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		input   string
		hour    int
		minute  int
		wantErr bool
	}{
		{name: "morning", input: "09:30", hour: 9, minute: 30},
		{name: "midnight", input: "00:00", hour: 0, minute: 0},
		{name: "last minute of day", input: "23:59", hour: 23, minute: 59},
		{name: "surrounding whitespace", input: " 08:15 ", hour: 8, minute: 15},
		{name: "missing colon", input: "0930", wantErr: true},
		{name: "hour out of range", input: "24:00", wantErr: true},
		{name: "minute out of range", input: "12:60", wantErr: true},
		{name: "negative hour", input: "-1:30", wantErr: true},
		{name: "not numeric", input: "ab:cd", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			hour, minute, err := ParseClockTime(tc.input)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("ParseClockTime(%q) succeeded, expected error", tc.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseClockTime(%q) returned error: %v", tc.input, err)
			}
			if hour != tc.hour || minute != tc.minute {
				t.Fatalf("ParseClockTime(%q) = %d:%d, want %d:%d", tc.input, hour, minute, tc.hour, tc.minute)
			}
		})
	}
}

func TestNextOccurrence(t *testing.T) {
	t.Parallel()

	base := time.Date(2024, time.January, 5, 15, 4, 5, 0, time.UTC)

	t.Run("time later today fires today", func(t *testing.T) {
		t.Parallel()

		got := NextOccurrence(base, 18, 30)
		want := time.Date(2024, time.January, 5, 18, 30, 0, 0, time.UTC)
		if !got.Equal(want) {
			t.Fatalf("NextOccurrence = %v, want %v", got, want)
		}
	})

	t.Run("time already passed fires tomorrow", func(t *testing.T) {
		t.Parallel()

		got := NextOccurrence(base, 9, 0)
		want := time.Date(2024, time.January, 6, 9, 0, 0, 0, time.UTC)
		if !got.Equal(want) {
			t.Fatalf("NextOccurrence = %v, want %v", got, want)
		}
	})

	t.Run("exact current minute fires tomorrow", func(t *testing.T) {
		t.Parallel()

		onTheMinute := time.Date(2024, time.January, 5, 15, 4, 0, 0, time.UTC)
		got := NextOccurrence(onTheMinute, 15, 4)
		want := time.Date(2024, time.January, 6, 15, 4, 0, 0, time.UTC)
		if !got.Equal(want) {
			t.Fatalf("NextOccurrence = %v, want %v", got, want)
		}
	})

	t.Run("crosses month boundary", func(t *testing.T) {
		t.Parallel()

		endOfMonth := time.Date(2024, time.January, 31, 23, 30, 0, 0, time.UTC)
		got := NextOccurrence(endOfMonth, 8, 0)
		want := time.Date(2024, time.February, 1, 8, 0, 0, 0, time.UTC)
		if !got.Equal(want) {
			t.Fatalf("NextOccurrence = %v, want %v", got, want)
		}
	})
}

func TestDecodeList(t *testing.T) {
	t.Parallel()

	t.Run("missing active flag defaults to true", func(t *testing.T) {
		t.Parallel()

		payload := `[{"id":"r1","extensionId":"ext-1","action":"enable","time":"09:00"}]`
		decoded, err := DecodeList([]byte(payload))
		if err != nil {
			t.Fatalf("DecodeList returned error: %v", err)
		}
		if len(decoded) != 1 {
			t.Fatalf("decoded %d rules, want 1", len(decoded))
		}
		if !decoded[0].Active {
			t.Fatalf("record without active flag decoded as inactive")
		}
	})

	t.Run("explicit false is preserved", func(t *testing.T) {
		t.Parallel()

		payload := `[{"id":"r1","extensionId":"ext-1","action":"disable","time":"21:00","active":false}]`
		decoded, err := DecodeList([]byte(payload))
		if err != nil {
			t.Fatalf("DecodeList returned error: %v", err)
		}
		if decoded[0].Active {
			t.Fatalf("explicit active=false decoded as active")
		}
	})

	t.Run("non-array payload is an error", func(t *testing.T) {
		t.Parallel()

		if _, err := DecodeList([]byte(`{"id":"r1"}`)); err == nil {
			t.Fatalf("DecodeList accepted a non-array payload")
		}
	})

	t.Run("round trip preserves fields", func(t *testing.T) {
		t.Parallel()

		start := "2024-01-01"
		original := []Rule{{
			ID:          "r1",
			Name:        "Work hours",
			ExtensionID: "ext-1",
			Action:      ActionEnable,
			Time:        "09:00",
			Days:        []string{"Monday", "Friday"},
			StartDate:   &start,
			Active:      true,
		}}

		data, err := EncodeList(original)
		if err != nil {
			t.Fatalf("EncodeList returned error: %v", err)
		}
		decoded, err := DecodeList(data)
		if err != nil {
			t.Fatalf("DecodeList returned error: %v", err)
		}
		if len(decoded) != 1 {
			t.Fatalf("decoded %d rules, want 1", len(decoded))
		}
		got := decoded[0]
		if got.ID != "r1" || got.Name != "Work hours" || got.ExtensionID != "ext-1" {
			t.Fatalf("identity fields not preserved: %+v", got)
		}
		if got.Action != ActionEnable || got.Time != "09:00" || !got.Active {
			t.Fatalf("schedule fields not preserved: %+v", got)
		}
		if len(got.Days) != 2 || got.Days[0] != "Monday" {
			t.Fatalf("days not preserved: %v", got.Days)
		}
		if got.StartDate == nil || *got.StartDate != start {
			t.Fatalf("start date not preserved: %v", got.StartDate)
		}
		if got.EndDate != nil {
			t.Fatalf("unset end date decoded as %v", *got.EndDate)
		}
	})
}

func TestCloneIndependence(t *testing.T) {
	t.Parallel()

	start := "2024-01-01"
	original := Rule{
		ID:        "r1",
		Days:      []string{"Monday"},
		StartDate: &start,
		Active:    true,
	}

	clone := original.Clone()
	clone.Days[0] = "Sunday"
	*clone.StartDate = "2030-12-31"

	if original.Days[0] != "Monday" {
		t.Fatalf("mutating clone days changed original: %v", original.Days)
	}
	if *original.StartDate != "2024-01-01" {
		t.Fatalf("mutating clone start date changed original: %v", *original.StartDate)
	}
}

func TestActionValid(t *testing.T) {
	t.Parallel()

	if !ActionEnable.Valid() || !ActionDisable.Valid() {
		t.Fatalf("supported actions reported invalid")
	}
	if Action("toggle").Valid() || Action("").Valid() {
		t.Fatalf("unsupported action reported valid")
	}
}

func TestValidWeekday(t *testing.T) {
	t.Parallel()

	for _, name := range []string{"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"} {
		if !ValidWeekday(name) {
			t.Fatalf("ValidWeekday(%q) = false", name)
		}
	}
	for _, name := range []string{"monday", "Mon", "Funday", ""} {
		if ValidWeekday(name) {
			t.Fatalf("ValidWeekday(%q) = true", name)
		}
	}
}
