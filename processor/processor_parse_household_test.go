package processor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fullHouseholdSubmission mirrors the shape the collection server hands out:
// identity block, flattened section groups and repeat-group arrays, with
// best-effort name+age sub-record joins.
const fullHouseholdSubmission = `{
	"_id": "uuid:household-0001",
	"end": "2026-03-14T10:30:00Z",
	"id": {
		"ward_number": 5,
		"area_code": "5042",
		"enumerator_id": "enum-kathmandu-021",
		"house_head_name": "Ram Bahadur",
		"house_head_phone": "9841000000",
		"religion": "hindu",
		"language": "maithili",
		"male_members": 3,
		"female_members": 2
	},
	"location": {
		"geometry": {"coordinates": [85.3240, 27.7172, 1350.0]},
		"properties": {"accuracy": 5.0}
	},
	"house": {"ownership": "private", "roof_type": "rcc"},
	"economics": {"annual_income": 250000, "has_loan": "yes", "loan_amount": 50000},
	"agriculture": {
		"food_crops": [
			{"crop": "paddy", "area_unit": "bigha", "bigha": 1, "production": 1200, "sales": 400},
			{"crop": "maize", "kattha": 2, "production": 300}
		],
		"fruit_crops": [
			{"crop": "mango", "tree_count": 12, "production": 80}
		],
		"animals": [
			{"animal": "cow", "count": 2, "revenue": 15000}
		]
	},
	"individuals": [
		{"name": "Ram Bahadur", "gender": "male", "age": 45, "relation": "self"},
		{"name": "Sita", "gender": "female", "age": 40, "relation": "wife"}
	],
	"deaths": [
		{"name": "Maya", "gender": "female", "age": 32, "cause": "chronic_disease"},
		{"name": "Hari", "gender": "male", "age": 70, "cause": "aging"}
	],
	"health_details": [
		{"name": "Ram Bahadur", "age": 45, "condition": "chronic_disease", "has_chronic_disease": "yes", "chronic_disease": "diabetes"}
	],
	"education_details": [
		{"name": "Sita", "age": 40, "literacy": "read_only"}
	]
}`

func TestParseHouseholdSubmission(t *testing.T) {
	rs, joins, err := ParseHouseholdSubmission([]byte(fullHouseholdSubmission))
	require.NoError(t, err)
	require.NotNil(t, rs.Household)

	hh := rs.Household
	assert.Equal(t, "uuid:household-0001", hh.SubmissionID)
	assert.Equal(t, SurveyKindHousehold, hh.SurveyKind)
	assert.Equal(t, 5, hh.WardNumber)
	assert.Equal(t, "5042", hh.AreaCode.String)
	assert.Equal(t, "enum-kathmandu-021", hh.EnumeratorID.String)
	assert.False(t, hh.BuildingToken.Valid)
	assert.Equal(t, "Ram Bahadur", hh.HeadName)
	assert.Equal(t, "Hindu", hh.Religion.String)
	assert.Equal(t, "Maithili", hh.Language.String)
	assert.Equal(t, int64(3), hh.MaleMembers.Int64)
	assert.Equal(t, "POINT(85.324 27.7172)", hh.Geo.Point.String)
	assert.InDelta(t, 1350.0, hh.Geo.Altitude.Float64, 1e-9)
	assert.True(t, hh.HasLoan.Bool)
	assert.InDelta(t, 50000, hh.LoanAmount.Float64, 1e-9)
	require.True(t, hh.SubmittedAt.Valid)
	assert.Equal(t, 2026, hh.SubmittedAt.Time.Year())

	// Crop areas are converted to square meters at parse time.
	require.Len(t, rs.Crops, 3)
	paddy := rs.Crops[0]
	assert.Equal(t, "Paddy", paddy.Name)
	assert.Equal(t, CropTypeFood, paddy.CropType)
	assert.Equal(t, "uuid:household-0001", paddy.ParentID)
	assert.InDelta(t, 6772.63, paddy.Area.Float64, 1e-9)
	assert.False(t, paddy.TreeCount.Valid)

	maize := rs.Crops[1]
	assert.Equal(t, "Maize", maize.Name)
	assert.InDelta(t, 677.26, maize.Area.Float64, 1e-9)

	mango := rs.Crops[2]
	assert.Equal(t, CropTypeFruit, mango.CropType)
	assert.Equal(t, int64(12), mango.TreeCount.Int64)

	require.Len(t, rs.Animals, 1)
	assert.Equal(t, "Cow", rs.Animals[0].Name)
	assert.Equal(t, int64(2), rs.Animals[0].Count.Int64)

	// Absent repeat groups parse to empty child lists, not errors.
	assert.Empty(t, rs.AnimalProducts)
	assert.Empty(t, rs.Lands)

	// Health and education sub-records fold into the matched individual.
	require.Len(t, rs.Individuals, 2)
	ram := rs.Individuals[0]
	assert.Equal(t, "Chronic disease", ram.HealthCondition.String)
	assert.Equal(t, "Yes", ram.HasChronicDisease.String)
	assert.Equal(t, "Diabetes", ram.ChronicDisease.String)
	assert.False(t, ram.LiteracyStatus.Valid)

	sita := rs.Individuals[1]
	assert.Equal(t, "Can read only", sita.LiteracyStatus.String)
	assert.False(t, sita.HealthCondition.Valid)

	// Deaths of women aged 15-49 are flagged as fertile-age deaths.
	require.Len(t, rs.Deaths, 2)
	assert.True(t, rs.Deaths[0].FertileDeath.Bool)
	assert.False(t, rs.Deaths[1].FertileDeath.Bool)

	assert.Equal(t, uint64(0), joins.Ambiguous)
	assert.Equal(t, uint64(0), joins.Unmatched)
}

func TestParseHouseholdSubmissionRequiredFields(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		wantErr string
	}{
		{
			name:    "missing submission id",
			payload: `{"id": {"ward_number": 5, "house_head_name": "X"}}`,
			wantErr: "_id",
		},
		{
			name:    "missing ward number",
			payload: `{"_id": "uuid:x", "id": {"house_head_name": "X"}}`,
			wantErr: "ward_number",
		},
		{
			name:    "missing head name",
			payload: `{"_id": "uuid:x", "id": {"ward_number": 5}}`,
			wantErr: "house_head_name",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := ParseHouseholdSubmission([]byte(tt.payload))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestParseHouseholdSubmissionMinimal(t *testing.T) {
	payload := `{"_id": "uuid:min", "id": {"ward_number": 1, "house_head_name": "Lone Head"}}`

	rs, joins, err := ParseHouseholdSubmission([]byte(payload))
	require.NoError(t, err)

	assert.Equal(t, "uuid:min", rs.SubmissionID())
	assert.False(t, rs.Household.Geo.Point.Valid)
	assert.False(t, rs.Household.SubmittedAt.Valid)
	assert.Empty(t, rs.Crops)
	assert.Empty(t, rs.Individuals)
	assert.Empty(t, rs.Deaths)
	assert.Equal(t, JoinStats{}, joins)
}

func TestParseHouseholdSubmissionJoinStats(t *testing.T) {
	payload := `{
		"_id": "uuid:joins",
		"id": {"ward_number": 2, "house_head_name": "Head"},
		"individuals": [
			{"name": "Twin", "age": 20},
			{"name": "Twin", "age": 20}
		],
		"health_details": [
			{"name": "Twin", "age": 20, "condition": "healthy"},
			{"name": "Nobody", "age": 99, "condition": "healthy"}
		]
	}`

	rs, joins, err := ParseHouseholdSubmission([]byte(payload))
	require.NoError(t, err)

	assert.Equal(t, uint64(1), joins.Ambiguous)
	assert.Equal(t, uint64(1), joins.Unmatched)

	// First match wins on ambiguous joins.
	assert.Equal(t, "Healthy", rs.Individuals[0].HealthCondition.String)
	assert.False(t, rs.Individuals[1].HealthCondition.Valid)
}

func TestParseHouseholdChildIDs(t *testing.T) {
	payload := `{
		"_id": "uuid:kids",
		"id": {"ward_number": 3, "house_head_name": "Head"},
		"agriculture": {
			"food_crops": [
				{"_id": "crop-row-77", "crop": "wheat"},
				{"crop": "millet"}
			]
		}
	}`

	rs, _, err := ParseHouseholdSubmission([]byte(payload))
	require.NoError(t, err)
	require.Len(t, rs.Crops, 2)

	// A row's own id wins; rows without one get a deterministic synthetic id.
	assert.Equal(t, "crop-row-77", rs.Crops[0].ChildID)
	assert.Equal(t, "uuid:kids/food_crops[1]", rs.Crops[1].ChildID)
}
