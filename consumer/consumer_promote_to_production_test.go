package consumer

import (
	"context"
	"fmt"
	"testing"

	"github.com/guregu/null"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/palikaops/survey-pipeline/processor"
)

// fakeResolver resolves against in-memory registries.
type fakeResolver struct {
	wards       map[int]int64
	areas       map[string]int64
	enumerators map[string]string
	tokens      map[string]string
	err         error
	calls       []string
}

func (f *fakeResolver) ResolveWard(_ context.Context, wardNumber int) (int64, bool, error) {
	f.calls = append(f.calls, fmt.Sprintf("ward:%d", wardNumber))
	if f.err != nil {
		return 0, false, f.err
	}
	id, ok := f.wards[wardNumber]
	return id, ok, nil
}

func (f *fakeResolver) ResolveArea(_ context.Context, code string) (int64, bool, error) {
	f.calls = append(f.calls, "area:"+code)
	if f.err != nil {
		return 0, false, f.err
	}
	id, ok := f.areas[code]
	return id, ok, nil
}

func (f *fakeResolver) ResolveEnumerator(_ context.Context, candidate string) (string, bool, error) {
	f.calls = append(f.calls, "enumerator:"+candidate)
	if f.err != nil {
		return "", false, f.err
	}
	id, ok := f.enumerators[IdentifierPrefix(candidate)]
	return id, ok, nil
}

func (f *fakeResolver) ResolveBuildingToken(_ context.Context, candidate string) (string, bool, error) {
	f.calls = append(f.calls, "token:"+candidate)
	if f.err != nil {
		return "", false, f.err
	}
	id, ok := f.tokens[IdentifierPrefix(candidate)]
	return id, ok, nil
}

// fakeLedger reports canned promotion state.
type fakeLedger struct {
	promoted map[string]bool
	err      error
}

func (f *fakeLedger) AlreadyPromoted(_ context.Context, stagingTable, recordID string) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	return f.promoted[stagingTable+"/"+recordID], nil
}

func promotableRecordSet(id string) *processor.RecordSet {
	return &processor.RecordSet{
		Kind: processor.SurveyKindHousehold,
		Household: &processor.HouseholdRecord{
			SubmissionCore: processor.SubmissionCore{
				SubmissionID: id,
				SurveyKind:   processor.SurveyKindHousehold,
				WardNumber:   5,
				AreaCode:     null.StringFrom("5042"),
				EnumeratorID: null.StringFrom("ENUM-KATHMANDU-021"),
			},
			HeadName: "Ram Bahadur",
		},
	}
}

func TestPromoteSkipsAlreadyPromoted(t *testing.T) {
	p := &PromoteToProduction{
		resolver: &fakeResolver{},
		ledger: &fakeLedger{promoted: map[string]bool{
			"staging_households/uuid:done": true,
		}},
	}

	result := p.promote(context.Background(), promotableRecordSet("uuid:done"))

	assert.Equal(t, processor.OutcomePromotionSkipped, result.Outcome)
	assert.Equal(t, "uuid:done", result.SubmissionID)
	assert.Empty(t, result.Error)
}

func TestPromoteValidationFailures(t *testing.T) {
	p := &PromoteToProduction{resolver: &fakeResolver{}, ledger: &fakeLedger{}}

	t.Run("no main record", func(t *testing.T) {
		result := p.promote(context.Background(), &processor.RecordSet{Kind: processor.SurveyKindHousehold})
		assert.Equal(t, processor.OutcomeValidationFailed, result.Outcome)
		assert.Contains(t, result.Error, "no main record")
	})

	t.Run("unknown survey kind", func(t *testing.T) {
		rs := promotableRecordSet("uuid:odd")
		rs.Kind = "census"
		result := p.promote(context.Background(), rs)
		assert.Equal(t, processor.OutcomeValidationFailed, result.Outcome)
		assert.Contains(t, result.Error, "census")
	})
}

func TestPromoteLedgerError(t *testing.T) {
	p := &PromoteToProduction{
		resolver: &fakeResolver{},
		ledger:   &fakeLedger{err: fmt.Errorf("ledger unreachable")},
	}

	result := p.promote(context.Background(), promotableRecordSet("uuid:x"))

	assert.Equal(t, processor.OutcomeFailed, result.Outcome)
	assert.Contains(t, result.Error, "ledger unreachable")
}

func TestResolveReferencesIndependence(t *testing.T) {
	// Only the ward resolves; the other flags stay false without blocking it.
	r := &fakeResolver{wards: map[int]int64{5: 5}}
	core := &promotableRecordSet("uuid:flags").Household.SubmissionCore

	res, err := resolveReferences(context.Background(), r, core)
	require.NoError(t, err)

	assert.True(t, res.WardValid)
	assert.Equal(t, int64(5), res.WardID)
	assert.False(t, res.AreaValid)
	assert.False(t, res.EnumeratorValid)
	assert.False(t, res.TokenValid)
}

func TestResolveReferencesAllValid(t *testing.T) {
	r := &fakeResolver{
		wards:       map[int]int64{5: 5},
		areas:       map[string]int64{"5042": 42},
		enumerators: map[string]string{"enum-kat": "enum-kathmandu-021"},
	}
	core := &promotableRecordSet("uuid:all").Household.SubmissionCore

	res, err := resolveReferences(context.Background(), r, core)
	require.NoError(t, err)

	assert.True(t, res.WardValid)
	assert.True(t, res.AreaValid)
	assert.Equal(t, int64(42), res.AreaID)
	assert.True(t, res.EnumeratorValid)
	assert.Equal(t, "enum-kathmandu-021", res.EnumeratorID)
	assert.False(t, res.TokenValid)
}

func TestResolveReferencesSkipsNullCandidates(t *testing.T) {
	r := &fakeResolver{wards: map[int]int64{1: 1}}
	core := &processor.SubmissionCore{
		SubmissionID: "uuid:minimal",
		SurveyKind:   processor.SurveyKindHousehold,
		WardNumber:   1,
	}

	_, err := resolveReferences(context.Background(), r, core)
	require.NoError(t, err)

	// Null area/enumerator/token candidates never hit the registries.
	assert.Equal(t, []string{"ward:1"}, r.calls)
}

func TestResolveReferencesPropagatesInfraError(t *testing.T) {
	r := &fakeResolver{err: fmt.Errorf("connection refused")}
	core := &promotableRecordSet("uuid:down").Household.SubmissionCore

	_, err := resolveReferences(context.Background(), r, core)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestPromoteResolutionErrorFailsSubmission(t *testing.T) {
	p := &PromoteToProduction{
		resolver: &fakeResolver{err: fmt.Errorf("connection refused")},
		ledger:   &fakeLedger{},
	}

	result := p.promote(context.Background(), promotableRecordSet("uuid:down"))

	assert.Equal(t, processor.OutcomeFailed, result.Outcome)
	assert.Contains(t, result.Error, "connection refused")
}

func TestSyncTables(t *testing.T) {
	staging, prod := syncTables(processor.SurveyKindBusiness)
	assert.Equal(t, "staging_businesses", staging)
	assert.Equal(t, "prod_businesses", prod)

	staging, prod = syncTables("unknown")
	assert.Empty(t, staging)
	assert.Empty(t, prod)
}

func TestNewPromoteToProductionConfig(t *testing.T) {
	_, err := NewPromoteToProduction(map[string]interface{}{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database_url is required")
}
