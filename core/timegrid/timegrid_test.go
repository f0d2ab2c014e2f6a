package timegrid

import (
	"testing"
)

func mustTime(t *testing.T, s string) TimeOfDay {
	t.Helper()
	tod, err := ParseTimeOfDay(s)
	if err != nil {
		t.Fatalf("ParseTimeOfDay(%q) error = %v", s, err)
	}
	return tod
}

func win(t *testing.T, start, end string) Window {
	t.Helper()
	w, err := NewWindow(mustTime(t, start), mustTime(t, end))
	if err != nil {
		t.Fatalf("NewWindow(%s, %s) error = %v", start, end, err)
	}
	return w
}

func TestParseTimeOfDay(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"09:00", "09:00", false},
		{"23:59", "23:59", false},
		{"0:05", "00:05", false},
		{"24:00", "", true},
		{"12:60", "", true},
		{"banana", "", true},
	}

	for _, tt := range tests {
		got, err := ParseTimeOfDay(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseTimeOfDay(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if err == nil && got.String() != tt.want {
			t.Errorf("ParseTimeOfDay(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestNewWindowRejectsInverted(t *testing.T) {
	if _, err := NewWindow(mustTime(t, "10:00"), mustTime(t, "10:00")); err == nil {
		t.Error("NewWindow with equal start/end should fail")
	}
	if _, err := NewWindow(mustTime(t, "11:00"), mustTime(t, "10:00")); err == nil {
		t.Error("NewWindow with end before start should fail")
	}
}

func TestOverlaps(t *testing.T) {
	tests := []struct {
		name string
		a, b Window
		want bool
	}{
		{"disjoint", win(t, "09:00", "10:00"), win(t, "11:00", "12:00"), false},
		{"touching edges", win(t, "09:00", "10:00"), win(t, "10:00", "11:00"), false},
		{"partial", win(t, "09:00", "10:30"), win(t, "10:00", "11:00"), true},
		{"contained", win(t, "09:00", "12:00"), win(t, "10:00", "11:00"), true},
		{"identical", win(t, "09:00", "10:00"), win(t, "09:00", "10:00"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Overlaps(tt.b); got != tt.want {
				t.Errorf("%s.Overlaps(%s) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
			// overlap is symmetric
			if got := tt.b.Overlaps(tt.a); got != tt.want {
				t.Errorf("%s.Overlaps(%s) = %v, want %v", tt.b, tt.a, got, tt.want)
			}
		})
	}
}

func TestContains(t *testing.T) {
	w := win(t, "09:00", "10:00")

	if !w.Contains(mustTime(t, "09:00")) {
		t.Error("window should contain its start")
	}
	if w.Contains(mustTime(t, "10:00")) {
		t.Error("window should not contain its end (half-open)")
	}
	if !w.Contains(mustTime(t, "09:30")) {
		t.Error("window should contain interior point")
	}
	if w.Contains(mustTime(t, "08:59")) {
		t.Error("window should not contain point before start")
	}
}

func TestSubtract(t *testing.T) {
	tests := []struct {
		name  string
		base  Window
		holes []Window
		want  []string
	}{
		{
			name:  "no holes",
			base:  win(t, "09:00", "12:00"),
			holes: nil,
			want:  []string{"09:00-12:00"},
		},
		{
			name:  "middle hole splits",
			base:  win(t, "09:00", "12:00"),
			holes: []Window{win(t, "10:00", "10:30")},
			want:  []string{"09:00-10:00", "10:30-12:00"},
		},
		{
			name:  "hole at start",
			base:  win(t, "09:00", "12:00"),
			holes: []Window{win(t, "09:00", "09:30")},
			want:  []string{"09:30-12:00"},
		},
		{
			name:  "hole at end",
			base:  win(t, "09:00", "12:00"),
			holes: []Window{win(t, "11:30", "12:00")},
			want:  []string{"09:00-11:30"},
		},
		{
			name:  "hole covers everything",
			base:  win(t, "09:00", "12:00"),
			holes: []Window{win(t, "08:00", "13:00")},
			want:  nil,
		},
		{
			name:  "disjoint hole ignored",
			base:  win(t, "09:00", "12:00"),
			holes: []Window{win(t, "13:00", "14:00")},
			want:  []string{"09:00-12:00"},
		},
		{
			name: "two holes three fragments",
			base: win(t, "09:00", "12:00"),
			holes: []Window{
				win(t, "10:00", "10:30"),
				win(t, "11:00", "11:30"),
			},
			want: []string{"09:00-10:00", "10:30-11:00", "11:30-12:00"},
		},
		{
			name:  "hole overlapping start boundary",
			base:  win(t, "09:00", "12:00"),
			holes: []Window{win(t, "08:00", "09:45")},
			want:  []string{"09:45-12:00"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.base.Subtract(tt.holes)
			if len(got) != len(tt.want) {
				t.Fatalf("Subtract() = %v, want %v", got, tt.want)
			}
			for i, w := range got {
				if w.String() != tt.want[i] {
					t.Errorf("Subtract()[%d] = %s, want %s", i, w, tt.want[i])
				}
			}
		})
	}
}

func TestAddMinutes(t *testing.T) {
	got := mustTime(t, "09:45").AddMinutes(30)
	if got.String() != "10:15" {
		t.Errorf("AddMinutes(30) = %s, want 10:15", got)
	}

	// capped at end of day
	capped := mustTime(t, "23:50").AddMinutes(30)
	if capped.Minutes() != 24*60 {
		t.Errorf("AddMinutes past midnight = %d minutes, want %d", capped.Minutes(), 24*60)
	}
}

func TestSortWindows(t *testing.T) {
	ws := []Window{
		win(t, "14:00", "15:00"),
		win(t, "09:00", "10:00"),
		win(t, "11:00", "12:00"),
	}
	SortWindows(ws)

	want := []string{"09:00-10:00", "11:00-12:00", "14:00-15:00"}
	for i, w := range ws {
		if w.String() != want[i] {
			t.Errorf("SortWindows()[%d] = %s, want %s", i, w, want[i])
		}
	}
}
