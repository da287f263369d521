package sections

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/jonathan/faculty-recruitment/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedClock() time.Time {
	return time.Date(2026, time.June, 1, 10, 0, 0, 0, time.UTC)
}

func newTestRegistry() *Registry {
	return NewRegistry(WithClock(fixedClock))
}

const validPersonalJSON = `{
	"title": "Dr",
	"full_name": "Asha Rao",
	"father_name": "Ravi Rao",
	"date_of_birth": "1985-04-12",
	"gender": "female",
	"category": "general",
	"nationality": "Indian",
	"mobile": "9876543210",
	"email": "asha@example.com",
	"correspondence_address": {"line1": "12 MG Road", "city": "Bengaluru", "state": "Karnataka", "pincode": "560001"},
	"permanent_address": {"line1": "12 MG Road", "city": "Bengaluru", "state": "Karnataka", "pincode": "560001"}
}`

const validDeclarationJSON = `{
	"information_true": true,
	"accepts_terms": true,
	"no_criminal_record": true,
	"agrees_to_verification": true
}`

func fieldNames(errs []types.FieldError) []string {
	names := make([]string, 0, len(errs))
	for _, e := range errs {
		names = append(names, e.Field)
	}
	return names
}

func findError(errs []types.FieldError, field string) (types.FieldError, bool) {
	for _, e := range errs {
		if e.Field == field {
			return e, true
		}
	}
	return types.FieldError{}, false
}

func TestNewRegistry_CoversEverySectionType(t *testing.T) {
	r := newTestRegistry()

	for _, st := range types.AllSectionTypes {
		t.Run(string(st), func(t *testing.T) {
			_, structured := r.Lookup(st)
			switch {
			case st.IsFileOnly(), st == types.SectionCustom:
				assert.False(t, structured, "%s should not have a structural schema", st)
			default:
				assert.True(t, structured, "%s should have a structural schema", st)
			}
		})
	}
}

func TestRegistry_MaxYear(t *testing.T) {
	r := newTestRegistry()
	assert.Equal(t, 2031, r.MaxYear())
}

func TestPersonalSchema(t *testing.T) {
	r := newTestRegistry()
	validate, ok := r.Lookup(types.SectionPersonal)
	require.True(t, ok)

	t.Run("valid payload", func(t *testing.T) {
		assert.Empty(t, validate(json.RawMessage(validPersonalJSON)))
	})

	t.Run("empty payload reports required fields", func(t *testing.T) {
		errs := validate(json.RawMessage(`{}`))
		names := fieldNames(errs)
		assert.Contains(t, names, "full_name")
		assert.Contains(t, names, "mobile")
		assert.Contains(t, names, "correspondence_address.pincode")
	})

	t.Run("bad mobile and pincode", func(t *testing.T) {
		var payload map[string]any
		require.NoError(t, json.Unmarshal([]byte(validPersonalJSON), &payload))
		payload["mobile"] = "5123456789"
		payload["correspondence_address"].(map[string]any)["pincode"] = "5600"
		data, err := json.Marshal(payload)
		require.NoError(t, err)

		errs := validate(data)
		require.Len(t, errs, 2)

		mobile, ok := findError(errs, "mobile")
		require.True(t, ok)
		assert.Equal(t, "must be a 10-digit mobile number starting with 6-9", mobile.Message)

		pincode, ok := findError(errs, "correspondence_address.pincode")
		require.True(t, ok)
		assert.Equal(t, "must be a 6-digit pincode", pincode.Message)
	})

	t.Run("wrong JSON type", func(t *testing.T) {
		errs := validate(json.RawMessage(`{"full_name": 42}`))
		require.Len(t, errs, 1)
		assert.Equal(t, "full_name", errs[0].Field)
		assert.Equal(t, "must be of type string", errs[0].Message)
	})

	t.Run("not an object", func(t *testing.T) {
		errs := validate(json.RawMessage(`["a"]`))
		require.Len(t, errs, 1)
		assert.Equal(t, "data", errs[0].Field)
	})

	t.Run("unknown key", func(t *testing.T) {
		errs := validate(json.RawMessage(`{"full_name": "Asha Rao", "favourite_colour": "blue"}`))
		require.Len(t, errs, 1)
		assert.Equal(t, "favourite_colour", errs[0].Field)
		assert.Equal(t, "is not a recognised field", errs[0].Message)
	})
}

func TestEducationSchema(t *testing.T) {
	r := newTestRegistry()
	validate, ok := r.Lookup(types.SectionEducation)
	require.True(t, ok)

	entry := func(year int) string {
		data, _ := json.Marshal(map[string]any{
			"entries": []map[string]any{{
				"exam_type":        "phd",
				"degree_name":      "Ph.D.",
				"institution":      "IISc",
				"board_university": "IISc Bengaluru",
				"year_of_passing":  year,
				"score_type":       "grade",
				"score":            1,
			}},
		})
		return string(data)
	}

	tests := []struct {
		name      string
		data      string
		wantField string
		wantMsg   string
	}{
		{"valid", entry(2015), "", ""},
		{"upper year bound", entry(2031), "", ""},
		{"missing entries", `{}`, "entries", "is required"},
		{"empty entries", `{"entries": []}`, "entries", "must contain at least 1 entries"},
		{"year too early", entry(1949), "entries[0].year_of_passing", "must be a 4-digit year between 1950 and 2031"},
		{"year too late", entry(2032), "entries[0].year_of_passing", "must be a 4-digit year between 1950 and 2031"},
		{"bad exam type", `{"entries": [{"exam_type": "bsc", "degree_name": "B.Sc", "institution": "X", "board_university": "Y", "year_of_passing": 2005, "score_type": "percentage", "score": 70}]}`,
			"entries[0].exam_type", "must be one of: 10th, 12th, diploma, graduation, post_graduation, mphil, phd, other"},
		{"entries wrong type", `{"entries": "none"}`, "entries", "must be of type array"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := validate(json.RawMessage(tt.data))
			if tt.wantField == "" {
				assert.Empty(t, errs)
				return
			}
			fe, ok := findError(errs, tt.wantField)
			require.True(t, ok, "expected error on %s, got %v", tt.wantField, errs)
			assert.Equal(t, tt.wantMsg, fe.Message)
		})
	}
}

func TestExperienceSchema_CrossFieldRules(t *testing.T) {
	r := newTestRegistry()
	validate, ok := r.Lookup(types.SectionExperience)
	require.True(t, ok)

	build := func(from, to string, present bool) json.RawMessage {
		e := map[string]any{
			"experience_type":     "teaching",
			"organization":        "NIT Trichy",
			"designation":         "Assistant Professor",
			"from_date":           from,
			"is_present_employer": present,
		}
		if to != "" {
			e["to_date"] = to
		}
		data, _ := json.Marshal(map[string]any{"entries": []any{e}})
		return data
	}

	t.Run("present employer without end date", func(t *testing.T) {
		assert.Empty(t, validate(build("2018-07-01", "", true)))
	})

	t.Run("past employer with valid range", func(t *testing.T) {
		assert.Empty(t, validate(build("2015-07-01", "2018-06-30", false)))
	})

	t.Run("same day range", func(t *testing.T) {
		assert.Empty(t, validate(build("2015-07-01", "2015-07-01", false)))
	})

	t.Run("past employer without end date", func(t *testing.T) {
		errs := validate(build("2015-07-01", "", false))
		fe, ok := findError(errs, "entries[0].to_date")
		require.True(t, ok, "got %v", errs)
		assert.Equal(t, "is required unless is_present_employer is true", fe.Message)
	})

	t.Run("end before start", func(t *testing.T) {
		errs := validate(build("2018-07-01", "2015-06-30", false))
		fe, ok := findError(errs, "entries[0].to_date")
		require.True(t, ok, "got %v", errs)
		assert.Equal(t, "must not be before from_date", fe.Message)
	})

	t.Run("malformed date", func(t *testing.T) {
		errs := validate(build("01/07/2015", "2018-06-30", false))
		fe, ok := findError(errs, "entries[0].from_date")
		require.True(t, ok, "got %v", errs)
		assert.Equal(t, "must be a date in YYYY-MM-DD format", fe.Message)
	})
}

func TestRefereesSchema_RequiresExactlyTwo(t *testing.T) {
	r := newTestRegistry()
	validate, ok := r.Lookup(types.SectionReferees)
	require.True(t, ok)

	referee := map[string]any{
		"name":         "Prof. K. Iyer",
		"designation":  "Professor",
		"organization": "IIT Madras",
		"email":        "iyer@example.com",
		"mobile":       "9123456780",
	}

	one, _ := json.Marshal(map[string]any{"entries": []any{referee}})
	two, _ := json.Marshal(map[string]any{"entries": []any{referee, referee}})
	three, _ := json.Marshal(map[string]any{"entries": []any{referee, referee, referee}})

	assert.Empty(t, validate(two))

	for name, data := range map[string][]byte{"one": one, "three": three} {
		t.Run(name, func(t *testing.T) {
			errs := validate(data)
			require.Len(t, errs, 1)
			assert.Equal(t, "entries", errs[0].Field)
			assert.Equal(t, "must contain exactly 2 entries", errs[0].Message)
		})
	}
}

func TestDeclarationSchema(t *testing.T) {
	r := newTestRegistry()
	validate, ok := r.Lookup(types.SectionDeclaration)
	require.True(t, ok)

	assert.Empty(t, validate(json.RawMessage(validDeclarationJSON)))

	errs := validate(json.RawMessage(`{"information_true": true, "accepts_terms": true, "no_criminal_record": false, "agrees_to_verification": true}`))
	require.Len(t, errs, 1)
	assert.Equal(t, "no_criminal_record", errs[0].Field)
	assert.Equal(t, "must be accepted", errs[0].Message)

	errs = validate(json.RawMessage(`{}`))
	assert.Equal(t, []string{"information_true", "accepts_terms", "no_criminal_record", "agrees_to_verification"}, fieldNames(errs))
}

func TestCreditPointsSchema_TotalMustMatch(t *testing.T) {
	r := newTestRegistry()
	validate, ok := r.Lookup(types.SectionCreditPoints)
	require.True(t, ok)

	assert.Empty(t, validate(json.RawMessage(`{"research_papers": 40, "books": 10, "projects": 5, "guidance": 5, "other": 0, "total": 60}`)))

	errs := validate(json.RawMessage(`{"research_papers": 40, "books": 10, "total": 70}`))
	require.Len(t, errs, 1)
	assert.Equal(t, "total", errs[0].Field)
}

func TestSponsoredProjectSchema_EndYearRequiredWhenCompleted(t *testing.T) {
	r := newTestRegistry()
	validate, ok := r.Lookup(types.SectionSponsoredProjects)
	require.True(t, ok)

	project := map[string]any{
		"title":          "Low-power sensor networks",
		"funding_agency": "DST",
		"amount_lakhs":   25.5,
		"role":           "principal_investigator",
		"status":         "completed",
		"start_year":     2019,
	}
	data, _ := json.Marshal(map[string]any{"entries": []any{project}})
	errs := validate(data)
	fe, ok := findError(errs, "entries[0].end_year")
	require.True(t, ok, "got %v", errs)
	assert.Equal(t, "is required", fe.Message)

	project["end_year"] = 2018
	data, _ = json.Marshal(map[string]any{"entries": []any{project}})
	errs = validate(data)
	fe, ok = findError(errs, "entries[0].end_year")
	require.True(t, ok, "got %v", errs)
	assert.Equal(t, "must not be earlier than start_year", fe.Message)

	project["end_year"] = 2022
	data, _ = json.Marshal(map[string]any{"entries": []any{project}})
	assert.Empty(t, validate(data))
}
