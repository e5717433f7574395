package consumer

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/guregu/null"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/palikaops/survey-pipeline/processor"
)

func TestNewSaveStagingToPostgreSQLConfig(t *testing.T) {
	_, err := NewSaveStagingToPostgreSQL(map[string]interface{}{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection_string is required")
}

func stagedHouseholdRecordSet() *processor.RecordSet {
	core := processor.SubmissionCore{
		SubmissionID: "uuid:staged-1",
		SurveyKind:   processor.SurveyKindHousehold,
		WardNumber:   5,
		AreaCode:     null.StringFrom("5042"),
	}
	return &processor.RecordSet{
		Kind:      processor.SurveyKindHousehold,
		Household: &processor.HouseholdRecord{SubmissionCore: core, HeadName: "Ram Bahadur"},
		Crops: []processor.CropRecord{
			{ChildID: "uuid:staged-1/food_crops[0]", ParentID: "uuid:staged-1", CropType: processor.CropTypeFood, Name: "Paddy"},
		},
		Individuals: []processor.IndividualRecord{
			{ChildID: "uuid:staged-1/individuals[0]", ParentID: "uuid:staged-1", Name: "Ram Bahadur"},
		},
	}
}

func recordSetMessage(t *testing.T, rs *processor.RecordSet) processor.Message {
	t.Helper()
	payload, err := json.Marshal(rs)
	require.NoError(t, err)
	return processor.Message{Payload: payload}
}

// The staging write is one transaction per submission, parent row first.
// sqlmock runs in ordered mode, so the expectation order is part of the
// assertion.
func TestSaveStagingToPostgreSQLProcess(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	consumer := &SaveStagingToPostgreSQL{db: db}

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO staging_households").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO staging_household_crops").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO staging_individuals").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err = consumer.Process(context.Background(), recordSetMessage(t, stagedHouseholdRecordSet()))
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveStagingToPostgreSQLRollsBackOnChildError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	consumer := &SaveStagingToPostgreSQL{db: db}

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO staging_households").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO staging_household_crops").
		WillReturnError(fmt.Errorf("disk full"))
	mock.ExpectRollback()

	err = consumer.Process(context.Background(), recordSetMessage(t, stagedHouseholdRecordSet()))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveStagingToPostgreSQLBuildingChildren(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	consumer := &SaveStagingToPostgreSQL{db: db}

	rs := &processor.RecordSet{
		Kind: processor.SurveyKindBuilding,
		Building: &processor.BuildingRecord{
			SubmissionCore: processor.SubmissionCore{
				SubmissionID: "uuid:bld-staged",
				SurveyKind:   processor.SurveyKindBuilding,
				WardNumber:   3,
			},
			OwnerName: "Krishna Thapa",
		},
		BuildingFamilies: []processor.BuildingFamilyRecord{
			{ChildID: "uuid:bld-staged/families[0]", ParentID: "uuid:bld-staged", HeadName: "Krishna Thapa"},
		},
		BuildingBusinesses: []processor.BuildingBusinessRecord{
			{ChildID: "uuid:bld-staged/businesses[0]", ParentID: "uuid:bld-staged", BusinessName: "Thapa Tailors"},
		},
	}

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO staging_buildings").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO staging_building_families").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO staging_building_businesses").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err = consumer.Process(context.Background(), recordSetMessage(t, rs))
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveStagingToPostgreSQLRejectsEmptyRecordSet(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	consumer := &SaveStagingToPostgreSQL{db: db}

	err = consumer.Process(context.Background(), recordSetMessage(t, &processor.RecordSet{Kind: processor.SurveyKindHousehold}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no main record")
}
