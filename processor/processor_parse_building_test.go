package processor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBuildingSubmission(t *testing.T) {
	payload := `{
		"_id": "uuid:bld-0001",
		"id": {"ward_number": 3, "area_code": "3021", "building_token": "BT-000451-ward3"},
		"building": {
			"owner_name": "Krishna Thapa",
			"owner_phone": "9801000000",
			"is_squatter": "no",
			"base": "rcc_pillar",
			"roof_type": "rcc",
			"floor_count": 2,
			"natural_disasters": "flood fire",
			"family_count": 2,
			"business_count": 1
		},
		"families": [
			{"head_name": "Krishna Thapa", "phone": "9801000000"},
			{"head_name": "Bimala Thapa"}
		],
		"businesses": [
			{"name": "Thapa Tailors", "operator_name": "Bimala Thapa"}
		]
	}`

	rs, err := ParseBuildingSubmission([]byte(payload))
	require.NoError(t, err)
	require.NotNil(t, rs.Building)
	assert.Equal(t, SurveyKindBuilding, rs.Kind)

	b := rs.Building
	assert.Equal(t, "uuid:bld-0001", b.SubmissionID)
	assert.Equal(t, "BT-000451-ward3", b.BuildingToken.String)
	assert.Equal(t, "Krishna Thapa", b.OwnerName)
	assert.False(t, b.IsSquatter.Bool)
	assert.True(t, b.IsSquatter.Valid)
	assert.Equal(t, int64(2), b.FloorCount.Int64)
	assert.Equal(t, "Flood, Fire", b.NaturalDisasters.String)

	require.Len(t, rs.BuildingFamilies, 2)
	assert.Equal(t, "Krishna Thapa", rs.BuildingFamilies[0].HeadName)
	assert.Equal(t, "uuid:bld-0001/families[1]", rs.BuildingFamilies[1].ChildID)
	assert.False(t, rs.BuildingFamilies[1].Phone.Valid)

	require.Len(t, rs.BuildingBusinesses, 1)
	assert.Equal(t, "Thapa Tailors", rs.BuildingBusinesses[0].BusinessName)
	assert.Equal(t, "uuid:bld-0001", rs.BuildingBusinesses[0].ParentID)
}

func TestParseBuildingSubmissionMissingOwner(t *testing.T) {
	payload := `{"_id": "uuid:bld-x", "id": {"ward_number": 3}, "building": {"roof_type": "rcc"}}`

	_, err := ParseBuildingSubmission([]byte(payload))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "building.owner_name")
}
