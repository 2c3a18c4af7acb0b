package names

import (
	"testing"

	"github.com/cockroachdb/errors"

	"github.com/D2SD/tesseract/errs"
)

func TestParseLevelName(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    LevelName
		wantErr bool
	}{
		{
			name: "three segments",
			in:   "geo.country.state",
			want: LevelName{Dimension: "geo", Hierarchy: "country", Level: "state"},
		},
		{
			name:    "two segments",
			in:      "geo.state",
			wantErr: true,
		},
		{
			name:    "four segments",
			in:      "geo.country.state.CA",
			wantErr: true,
		},
		{
			name:    "empty segment",
			in:      "geo..state",
			wantErr: true,
		},
		{
			name:    "empty string",
			in:      "",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseLevelName(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseLevelName(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if tt.wantErr {
				if !errors.Is(err, errs.ErrParse) {
					t.Errorf("ParseLevelName(%q) error = %v, want ErrParse", tt.in, err)
				}
				return
			}
			if got != tt.want {
				t.Errorf("ParseLevelName(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestLevelNameFromPartsMatchesString(t *testing.T) {
	fromParts, err := LevelNameFromParts([]string{"foo", "bar", "baz"})
	if err != nil {
		t.Fatalf("LevelNameFromParts error = %v", err)
	}
	fromString, err := ParseLevelName("foo.bar.baz")
	if err != nil {
		t.Fatalf("ParseLevelName error = %v", err)
	}
	if fromParts != fromString {
		t.Errorf("parts %v != string %v", fromParts, fromString)
	}
	if fromParts.String() != "foo.bar.baz" {
		t.Errorf("String() = %q", fromParts.String())
	}
}

func TestParseCut(t *testing.T) {
	tests := []struct {
		name        string
		in          string
		wantLevel   LevelName
		wantMembers []string
		wantExcl    bool
		wantErr     bool
	}{
		{
			name:        "single member",
			in:          "geo.country.state.CA",
			wantLevel:   LevelName{"geo", "country", "state"},
			wantMembers: []string{"CA"},
		},
		{
			name:        "comma separated members",
			in:          "year.year.year.2015,2016",
			wantLevel:   LevelName{"year", "year", "year"},
			wantMembers: []string{"2015", "2016"},
		},
		{
			name:        "exclusive",
			in:          "~geo.country.state.CA",
			wantLevel:   LevelName{"geo", "country", "state"},
			wantMembers: []string{"CA"},
			wantExcl:    true,
		},
		{
			name:    "missing member segment",
			in:      "geo.country.state",
			wantErr: true,
		},
		{
			name:    "empty member",
			in:      "geo.country.state.",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseCut(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseCut(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if got.Level != tt.wantLevel {
				t.Errorf("level = %v, want %v", got.Level, tt.wantLevel)
			}
			if len(got.Members) != len(tt.wantMembers) {
				t.Fatalf("members = %v, want %v", got.Members, tt.wantMembers)
			}
			for i := range got.Members {
				if got.Members[i] != tt.wantMembers[i] {
					t.Errorf("member[%d] = %q, want %q", i, got.Members[i], tt.wantMembers[i])
				}
			}
			if got.Exclusive != tt.wantExcl {
				t.Errorf("exclusive = %v, want %v", got.Exclusive, tt.wantExcl)
			}
		})
	}
}

func TestParseProperty(t *testing.T) {
	p, err := ParseProperty("geo.country.state.iso_code")
	if err != nil {
		t.Fatalf("ParseProperty error = %v", err)
	}
	if p.Level != (LevelName{"geo", "country", "state"}) || p.Name != "iso_code" {
		t.Errorf("ParseProperty = %+v", p)
	}
	if _, err := ParseProperty("geo.state.iso_code"); err == nil {
		t.Error("ParseProperty with three segments: want error")
	}
}

func TestParseMeasure(t *testing.T) {
	m, err := ParseMeasure("revenue")
	if err != nil || m != "revenue" {
		t.Errorf("ParseMeasure = %v, %v", m, err)
	}
	if _, err := ParseMeasure(""); err == nil {
		t.Error("ParseMeasure(\"\"): want error")
	}
}
