package consumer

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/palikaops/survey-pipeline/processor"
)

// Area lifecycle states. The pipeline owns exactly one transition,
// newly_assigned → ongoing_survey; every other transition belongs to the
// admin subsystem.
const (
	AreaStatusNewlyAssigned = "newly_assigned"
	AreaStatusOngoingSurvey = "ongoing_survey"
)

// SyncLedger records completed promotions. A ledger hit means the record was
// already promoted and must be skipped: promotion is one-time, unlike
// staging, which is idempotent-overwrite.
type SyncLedger interface {
	AlreadyPromoted(ctx context.Context, stagingTable, recordID string) (bool, error)
}

// PromoteToProduction validates staged record sets against the registries
// and copies them into the production tables. All writes for one submission
// (production rows, child rows, token allocation, area transition, ledger
// entry) commit in a single transaction.
type PromoteToProduction struct {
	db         *pgxpool.Pool
	resolver   RegistryResolver
	ledger     SyncLedger
	processors []processor.Processor
	mu         sync.Mutex
	stats      struct {
		Promoted           uint64
		Skipped            uint64
		Failed             uint64
		InvalidWards       uint64
		InvalidAreas       uint64
		InvalidEnumerators uint64
		InvalidTokens      uint64
		LastPromotionTime  time.Time
	}
}

const productionSchema = `
CREATE TABLE IF NOT EXISTS wards (
    ward_number INTEGER PRIMARY KEY,
    boundary    TEXT
);

CREATE TABLE IF NOT EXISTS survey_areas (
    id          BIGSERIAL PRIMARY KEY,
    code        INTEGER UNIQUE NOT NULL,
    ward_number INTEGER REFERENCES wards(ward_number),
    boundary    TEXT,
    assigned_to TEXT,
    status      TEXT NOT NULL DEFAULT 'unassigned'
);

CREATE TABLE IF NOT EXISTS enumerators (
    id               TEXT PRIMARY KEY,
    name             TEXT,
    ward_number      INTEGER,
    assigned_area_id BIGINT REFERENCES survey_areas(id)
);

CREATE TABLE IF NOT EXISTS building_tokens (
    token        TEXT PRIMARY KEY,
    area_id      BIGINT REFERENCES survey_areas(id),
    status       TEXT NOT NULL DEFAULT 'unallocated',
    allocated_at TIMESTAMPTZ
);

CREATE TABLE IF NOT EXISTS synced_records (
    id               BIGSERIAL PRIMARY KEY,
    staging_table    TEXT NOT NULL,
    production_table TEXT NOT NULL,
    record_id        TEXT NOT NULL,
    synced_at        TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP,
    UNIQUE (staging_table, record_id)
);

CREATE TABLE IF NOT EXISTS prod_households (
    LIKE staging_households INCLUDING ALL,
    ward_id             INTEGER,
    area_id             BIGINT,
    enumerator_ref_id   TEXT,
    building_token_ref  TEXT,
    is_ward_valid       BOOLEAN NOT NULL DEFAULT FALSE,
    is_area_valid       BOOLEAN NOT NULL DEFAULT FALSE,
    is_enumerator_valid BOOLEAN NOT NULL DEFAULT FALSE,
    is_building_token_valid BOOLEAN NOT NULL DEFAULT FALSE
);

CREATE TABLE IF NOT EXISTS prod_businesses (
    LIKE staging_businesses INCLUDING ALL,
    ward_id             INTEGER,
    area_id             BIGINT,
    enumerator_ref_id   TEXT,
    building_token_ref  TEXT,
    is_ward_valid       BOOLEAN NOT NULL DEFAULT FALSE,
    is_area_valid       BOOLEAN NOT NULL DEFAULT FALSE,
    is_enumerator_valid BOOLEAN NOT NULL DEFAULT FALSE,
    is_building_token_valid BOOLEAN NOT NULL DEFAULT FALSE
);

CREATE TABLE IF NOT EXISTS prod_buildings (
    LIKE staging_buildings INCLUDING ALL,
    ward_id             INTEGER,
    area_id             BIGINT,
    enumerator_ref_id   TEXT,
    building_token_ref  TEXT,
    is_ward_valid       BOOLEAN NOT NULL DEFAULT FALSE,
    is_area_valid       BOOLEAN NOT NULL DEFAULT FALSE,
    is_enumerator_valid BOOLEAN NOT NULL DEFAULT FALSE,
    is_building_token_valid BOOLEAN NOT NULL DEFAULT FALSE
);

CREATE TABLE IF NOT EXISTS prod_household_crops (LIKE staging_household_crops INCLUDING ALL);
CREATE TABLE IF NOT EXISTS prod_household_animals (LIKE staging_household_animals INCLUDING ALL);
CREATE TABLE IF NOT EXISTS prod_household_animal_products (LIKE staging_household_animal_products INCLUDING ALL);
CREATE TABLE IF NOT EXISTS prod_household_lands (LIKE staging_household_lands INCLUDING ALL);
CREATE TABLE IF NOT EXISTS prod_individuals (LIKE staging_individuals INCLUDING ALL);
CREATE TABLE IF NOT EXISTS prod_deaths (LIKE staging_deaths INCLUDING ALL);
CREATE TABLE IF NOT EXISTS prod_building_families (LIKE staging_building_families INCLUDING ALL);
CREATE TABLE IF NOT EXISTS prod_building_businesses (LIKE staging_building_businesses INCLUDING ALL);
`

// Staging/production table pairs per survey kind, as recorded in the ledger.
func syncTables(kind string) (stagingTable, productionTable string) {
	switch kind {
	case processor.SurveyKindHousehold:
		return "staging_households", "prod_households"
	case processor.SurveyKindBusiness:
		return "staging_businesses", "prod_businesses"
	case processor.SurveyKindBuilding:
		return "staging_buildings", "prod_buildings"
	}
	return "", ""
}

func NewPromoteToProduction(config map[string]interface{}) (*PromoteToProduction, error) {
	dbURL, ok := config["database_url"].(string)
	if !ok {
		return nil, fmt.Errorf("database_url is required")
	}

	db, err := pgxpool.New(context.Background(), dbURL)
	if err != nil {
		return nil, fmt.Errorf("error connecting to database: %w", err)
	}

	// The prod_* tables mirror the staging tables via LIKE, so the staging
	// schema must exist first; both are idempotent.
	if _, err := db.Exec(context.Background(), stagingSchema); err != nil {
		return nil, fmt.Errorf("error initializing staging schema: %w", err)
	}
	if _, err := db.Exec(context.Background(), productionSchema); err != nil {
		return nil, fmt.Errorf("error initializing production schema: %w", err)
	}

	return &PromoteToProduction{
		db:       db,
		resolver: NewPostgresResolver(db),
		ledger:   &PostgresSyncLedger{db: db},
	}, nil
}

func (p *PromoteToProduction) Subscribe(proc processor.Processor) {
	p.processors = append(p.processors, proc)
}

func (p *PromoteToProduction) Process(ctx context.Context, msg processor.Message) error {
	payload, ok := msg.Payload.([]byte)
	if !ok {
		return fmt.Errorf("expected []byte payload, got %T", msg.Payload)
	}

	var rs processor.RecordSet
	if err := json.Unmarshal(payload, &rs); err != nil {
		return fmt.Errorf("error unmarshaling record set: %w", err)
	}

	result := p.promote(ctx, &rs)

	p.recordStats(result)

	if result.Outcome == processor.OutcomeFailed {
		// The batch continues; the failure surfaces via the sync result.
		log.Printf("promotion failed for %s submission %s: %s",
			result.SurveyKind, result.SubmissionID, result.Error)
	}

	return processor.ForwardToProcessors(ctx, result, p.processors)
}

func (p *PromoteToProduction) promote(ctx context.Context, rs *processor.RecordSet) processor.SyncResult {
	result := processor.SyncResult{
		SubmissionID: rs.SubmissionID(),
		SurveyKind:   rs.Kind,
		CompletedAt:  time.Now().UTC(),
	}

	core := rs.Core()
	if core == nil || core.SubmissionID == "" {
		result.Outcome = processor.OutcomeValidationFailed
		result.Error = "record set has no main record"
		return result
	}

	stagingTable, productionTable := syncTables(rs.Kind)
	if stagingTable == "" {
		result.Outcome = processor.OutcomeValidationFailed
		result.Error = fmt.Sprintf("unknown survey kind %q", rs.Kind)
		return result
	}

	promoted, err := p.ledger.AlreadyPromoted(ctx, stagingTable, core.SubmissionID)
	if err != nil {
		result.Outcome = processor.OutcomeFailed
		result.Error = err.Error()
		return result
	}
	if promoted {
		result.Outcome = processor.OutcomePromotionSkipped
		return result
	}

	// Validity flags are recomputed on every attempt: the registries may
	// have changed since a previous run.
	res, err := resolveReferences(ctx, p.resolver, core)
	if err != nil {
		result.Outcome = processor.OutcomeFailed
		result.Error = err.Error()
		return result
	}
	result.WardValid = res.WardValid
	result.AreaValid = res.AreaValid
	result.EnumeratorValid = res.EnumeratorValid
	result.TokenValid = res.TokenValid

	if err := p.apply(ctx, rs, res, stagingTable, productionTable); err != nil {
		result.Outcome = processor.OutcomeFailed
		result.Error = err.Error()
		return result
	}

	result.Outcome = processor.OutcomePromoted
	return result
}

// resolution carries the resolved registry keys for one submission. Invalid
// references leave their zero value; the flags are authoritative.
type resolution struct {
	WardID          int64
	WardValid       bool
	AreaID          int64
	AreaValid       bool
	EnumeratorID    string
	EnumeratorValid bool
	Token           string
	TokenValid      bool
}

// resolveReferences resolves all four candidates independently: one miss
// never blocks the others. Only infrastructure errors propagate.
func resolveReferences(ctx context.Context, r RegistryResolver, core *processor.SubmissionCore) (resolution, error) {
	var res resolution
	var err error

	res.WardID, res.WardValid, err = r.ResolveWard(ctx, core.WardNumber)
	if err != nil {
		return res, err
	}

	if core.AreaCode.Valid {
		res.AreaID, res.AreaValid, err = r.ResolveArea(ctx, core.AreaCode.String)
		if err != nil {
			return res, err
		}
	}

	if core.EnumeratorID.Valid {
		res.EnumeratorID, res.EnumeratorValid, err = r.ResolveEnumerator(ctx, core.EnumeratorID.String)
		if err != nil {
			return res, err
		}
	}

	if core.BuildingToken.Valid {
		res.Token, res.TokenValid, err = r.ResolveBuildingToken(ctx, core.BuildingToken.String)
		if err != nil {
			return res, err
		}
	}

	return res, nil
}

// apply performs every promotion write in one transaction: either all of
// {production rows, child rows, token allocation, area transition, ledger
// entry} commit, or none do.
func (p *PromoteToProduction) apply(ctx context.Context, rs *processor.RecordSet, res resolution, stagingTable, productionTable string) error {
	tx, err := p.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("error starting promotion transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	switch {
	case rs.Household != nil:
		err = insertProdHousehold(ctx, tx, rs.Household, res)
	case rs.Business != nil:
		err = insertProdBusiness(ctx, tx, rs.Business, res)
	case rs.Building != nil:
		err = insertProdBuilding(ctx, tx, rs.Building, res)
	}
	if err != nil {
		return fmt.Errorf("error writing production record %s: %w", rs.SubmissionID(), err)
	}

	if err := insertProdChildren(ctx, tx, rs); err != nil {
		return err
	}

	if res.TokenValid {
		if err := AllocateToken(ctx, tx, res.Token); err != nil {
			return err
		}
	}

	if res.AreaValid && res.EnumeratorValid {
		if err := startAreaSurvey(ctx, tx, res.AreaID, res.EnumeratorID); err != nil {
			return err
		}
	}

	if _, err := tx.Exec(ctx,
		`INSERT INTO synced_records (staging_table, production_table, record_id)
         VALUES ($1, $2, $3)
         ON CONFLICT (staging_table, record_id) DO NOTHING`,
		stagingTable, productionTable, rs.SubmissionID()); err != nil {
		return fmt.Errorf("error writing sync ledger entry: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("error committing promotion: %w", err)
	}
	return nil
}

// startAreaSurvey transitions the submission's area newly_assigned →
// ongoing_survey when the resolved enumerator is the one the area is
// assigned to. The row lock serializes submissions racing on the same area.
func startAreaSurvey(ctx context.Context, tx pgx.Tx, areaID int64, enumeratorID string) error {
	var status string
	err := tx.QueryRow(ctx,
		`SELECT status FROM survey_areas WHERE id = $1 FOR UPDATE`, areaID).Scan(&status)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("error locking area %d: %w", areaID, err)
	}
	if status != AreaStatusNewlyAssigned {
		return nil
	}

	var assignedAreaID sql.NullInt64
	err = tx.QueryRow(ctx,
		`SELECT assigned_area_id FROM enumerators WHERE id = $1`, enumeratorID).Scan(&assignedAreaID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("error reading enumerator %s assignment: %w", enumeratorID, err)
	}
	if !assignedAreaID.Valid || assignedAreaID.Int64 != areaID {
		return nil
	}

	if _, err := tx.Exec(ctx,
		`UPDATE survey_areas SET status = $1 WHERE id = $2`,
		AreaStatusOngoingSurvey, areaID); err != nil {
		return fmt.Errorf("error transitioning area %d to %s: %w", areaID, AreaStatusOngoingSurvey, err)
	}
	log.Printf("area %d entered %s (enumerator %s)", areaID, AreaStatusOngoingSurvey, enumeratorID)
	return nil
}

func insertProdHousehold(ctx context.Context, tx pgx.Tx, h *processor.HouseholdRecord, res resolution) error {
	_, err := tx.Exec(ctx, `
        INSERT INTO prod_households (
            submission_id, survey_kind, submitted_at, ward_number, area_code,
            enumerator_id, building_token, geo_point, altitude, gps_accuracy,
            head_name, head_phone, locality, male_members, female_members,
            religion, language, ethnicity, house_ownership, land_ownership,
            house_foundation, roof_type, toilet_type, water_source,
            cooking_fuel, electricity_source, waste_disposal, income_sources,
            annual_income, annual_expense, has_loan, loan_amount,
            has_insurance, in_agriculture, food_sufficiency, household_photo,
            enumeration_note, surveyed_indoors, absent_householder,
            ward_id, area_id, enumerator_ref_id, building_token_ref,
            is_ward_valid, is_area_valid, is_enumerator_valid, is_building_token_valid
        ) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,
                  $18,$19,$20,$21,$22,$23,$24,$25,$26,$27,$28,$29,$30,$31,$32,
                  $33,$34,$35,$36,$37,$38,$39,$40,$41,$42,$43,$44,$45,$46,$47)
        ON CONFLICT (submission_id) DO NOTHING`,
		h.SubmissionID, h.SurveyKind, h.SubmittedAt, h.WardNumber, h.AreaCode,
		h.EnumeratorID, h.BuildingToken, h.Point, h.Altitude, h.Accuracy,
		h.HeadName, h.HeadPhone, h.Locality, h.MaleMembers, h.FemaleMembers,
		h.Religion, h.Language, h.Ethnicity, h.HouseOwnership, h.LandOwnership,
		h.HouseFoundation, h.RoofType, h.ToiletType, h.WaterSource,
		h.CookingFuel, h.Electricity, h.WasteDisposal, h.IncomeSources,
		h.AnnualIncome, h.AnnualExpense, h.HasLoan, h.LoanAmount,
		h.HasInsurance, h.InAgriculture, h.FoodSufficiency, h.HouseholdPhoto,
		h.EnumerationNote, h.SurveyedIndoors, h.AbsentHouseholder,
		nullableID(res.WardID, res.WardValid), nullableID(res.AreaID, res.AreaValid),
		nullableStr(res.EnumeratorID, res.EnumeratorValid), nullableStr(res.Token, res.TokenValid),
		res.WardValid, res.AreaValid, res.EnumeratorValid, res.TokenValid,
	)
	return err
}

func insertProdBusiness(ctx context.Context, tx pgx.Tx, b *processor.BusinessRecord, res resolution) error {
	_, err := tx.Exec(ctx, `
        INSERT INTO prod_businesses (
            submission_id, survey_kind, submitted_at, ward_number, area_code,
            enumerator_id, building_token, geo_point, altitude, gps_accuracy,
            business_name, business_nature, business_type, operator_name,
            operator_phone, operator_gender, registered, registered_bodies,
            pan_number, investment, annual_profit, partner_count,
            male_employees, female_employees, hotel_accommodation_type,
            hotel_room_count, hotel_bed_count,
            ward_id, area_id, enumerator_ref_id, building_token_ref,
            is_ward_valid, is_area_valid, is_enumerator_valid, is_building_token_valid
        ) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,
                  $18,$19,$20,$21,$22,$23,$24,$25,$26,$27,$28,$29,$30,$31,$32,
                  $33,$34,$35)
        ON CONFLICT (submission_id) DO NOTHING`,
		b.SubmissionID, b.SurveyKind, b.SubmittedAt, b.WardNumber, b.AreaCode,
		b.EnumeratorID, b.BuildingToken, b.Point, b.Altitude, b.Accuracy,
		b.BusinessName, b.BusinessNature, b.BusinessType, b.OperatorName,
		b.OperatorPhone, b.OperatorGender, b.Registered, b.RegisteredBodies,
		b.PANNumber, b.Investment, b.AnnualProfit, b.PartnerCount,
		b.MaleEmployees, b.FemaleEmployees, b.HotelAccomType,
		b.HotelRoomCount, b.HotelBedCount,
		nullableID(res.WardID, res.WardValid), nullableID(res.AreaID, res.AreaValid),
		nullableStr(res.EnumeratorID, res.EnumeratorValid), nullableStr(res.Token, res.TokenValid),
		res.WardValid, res.AreaValid, res.EnumeratorValid, res.TokenValid,
	)
	return err
}

func insertProdBuilding(ctx context.Context, tx pgx.Tx, b *processor.BuildingRecord, res resolution) error {
	_, err := tx.Exec(ctx, `
        INSERT INTO prod_buildings (
            submission_id, survey_kind, submitted_at, ward_number, area_code,
            enumerator_id, building_token, geo_point, altitude, gps_accuracy,
            owner_name, owner_phone, is_squatter, land_ownership,
            building_base, roof_type, floor_count, natural_disasters,
            family_count, business_count, building_photo,
            ward_id, area_id, enumerator_ref_id, building_token_ref,
            is_ward_valid, is_area_valid, is_enumerator_valid, is_building_token_valid
        ) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,
                  $18,$19,$20,$21,$22,$23,$24,$25,$26,$27,$28,$29)
        ON CONFLICT (submission_id) DO NOTHING`,
		b.SubmissionID, b.SurveyKind, b.SubmittedAt, b.WardNumber, b.AreaCode,
		b.EnumeratorID, b.BuildingToken, b.Point, b.Altitude, b.Accuracy,
		b.OwnerName, b.OwnerPhone, b.IsSquatter, b.LandOwnership,
		b.BuildingBase, b.RoofType, b.FloorCount, b.NaturalDisasters,
		b.FamilyCount, b.BusinessCount, b.BuildingPhoto,
		nullableID(res.WardID, res.WardValid), nullableID(res.AreaID, res.AreaValid),
		nullableStr(res.EnumeratorID, res.EnumeratorValid), nullableStr(res.Token, res.TokenValid),
		res.WardValid, res.AreaValid, res.EnumeratorValid, res.TokenValid,
	)
	return err
}

// insertProdChildren copies child rows into production. Children are
// insert-only under promotion: a re-run never duplicates them.
func insertProdChildren(ctx context.Context, tx pgx.Tx, rs *processor.RecordSet) error {
	for _, c := range rs.Crops {
		if _, err := tx.Exec(ctx, `
            INSERT INTO prod_household_crops (
                child_id, parent_id, crop_type, name, area_sq_meters,
                production_kg, sales_kg, revenue, tree_count, remarks
            ) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
            ON CONFLICT (child_id) DO NOTHING`,
			c.ChildID, c.ParentID, c.CropType, c.Name, c.Area,
			c.Production, c.Sales, c.Revenue, c.TreeCount, c.Remarks); err != nil {
			return fmt.Errorf("error promoting crop %s: %w", c.ChildID, err)
		}
	}
	for _, a := range rs.Animals {
		if _, err := tx.Exec(ctx, `
            INSERT INTO prod_household_animals (
                child_id, parent_id, name, count, sold_count, revenue
            ) VALUES ($1,$2,$3,$4,$5,$6)
            ON CONFLICT (child_id) DO NOTHING`,
			a.ChildID, a.ParentID, a.Name, a.Count, a.SoldCount, a.Revenue); err != nil {
			return fmt.Errorf("error promoting animal %s: %w", a.ChildID, err)
		}
	}
	for _, ap := range rs.AnimalProducts {
		if _, err := tx.Exec(ctx, `
            INSERT INTO prod_household_animal_products (
                child_id, parent_id, name, unit, production, sales, revenue, months_produced
            ) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
            ON CONFLICT (child_id) DO NOTHING`,
			ap.ChildID, ap.ParentID, ap.Name, ap.Unit, ap.Production, ap.Sales,
			ap.Revenue, ap.MonthsProduced); err != nil {
			return fmt.Errorf("error promoting animal product %s: %w", ap.ChildID, err)
		}
	}
	for _, l := range rs.Lands {
		if _, err := tx.Exec(ctx, `
            INSERT INTO prod_household_lands (
                child_id, parent_id, ward_number, area_sq_meters, ownership, is_irrigated
            ) VALUES ($1,$2,$3,$4,$5,$6)
            ON CONFLICT (child_id) DO NOTHING`,
			l.ChildID, l.ParentID, l.WardNumber, l.Area, l.Ownership, l.IsIrrigated); err != nil {
			return fmt.Errorf("error promoting land %s: %w", l.ChildID, err)
		}
	}
	for _, i := range rs.Individuals {
		if _, err := tx.Exec(ctx, `
            INSERT INTO prod_individuals (
                child_id, parent_id, name, gender, age, relation, mother_tongue,
                citizenship, health_condition, has_chronic_disease,
                chronic_disease, disability_kind, literacy_status,
                schooling_status, education_level, occupation, work_months,
                skill_training, alive_sons, alive_daughters
            ) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20)
            ON CONFLICT (child_id) DO NOTHING`,
			i.ChildID, i.ParentID, i.Name, i.Gender, i.Age, i.Relation, i.MotherTongue,
			i.Citizenship, i.HealthCondition, i.HasChronicDisease,
			i.ChronicDisease, i.DisabilityKind, i.LiteracyStatus,
			i.SchoolingStatus, i.EducationLevel, i.Occupation, i.WorkMonths,
			i.SkillTraining, i.AliveSons, i.AliveDaughters); err != nil {
			return fmt.Errorf("error promoting individual %s: %w", i.ChildID, err)
		}
	}
	for _, d := range rs.Deaths {
		if _, err := tx.Exec(ctx, `
            INSERT INTO prod_deaths (
                child_id, parent_id, name, gender, age, cause, fertile_death
            ) VALUES ($1,$2,$3,$4,$5,$6,$7)
            ON CONFLICT (child_id) DO NOTHING`,
			d.ChildID, d.ParentID, d.Name, d.Gender, d.Age, d.Cause, d.FertileDeath); err != nil {
			return fmt.Errorf("error promoting death record %s: %w", d.ChildID, err)
		}
	}
	for _, f := range rs.BuildingFamilies {
		if _, err := tx.Exec(ctx, `
            INSERT INTO prod_building_families (child_id, parent_id, head_name, phone)
            VALUES ($1,$2,$3,$4)
            ON CONFLICT (child_id) DO NOTHING`,
			f.ChildID, f.ParentID, f.HeadName, f.Phone); err != nil {
			return fmt.Errorf("error promoting building family %s: %w", f.ChildID, err)
		}
	}
	for _, b := range rs.BuildingBusinesses {
		if _, err := tx.Exec(ctx, `
            INSERT INTO prod_building_businesses (child_id, parent_id, business_name, operator_name)
            VALUES ($1,$2,$3,$4)
            ON CONFLICT (child_id) DO NOTHING`,
			b.ChildID, b.ParentID, b.BusinessName, b.OperatorName); err != nil {
			return fmt.Errorf("error promoting building business %s: %w", b.ChildID, err)
		}
	}
	return nil
}

func nullableID(id int64, valid bool) interface{} {
	if !valid {
		return nil
	}
	return id
}

func nullableStr(s string, valid bool) interface{} {
	if !valid {
		return nil
	}
	return s
}

func (p *PromoteToProduction) recordStats(result processor.SyncResult) {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch result.Outcome {
	case processor.OutcomePromoted:
		p.stats.Promoted++
		p.stats.LastPromotionTime = time.Now()
		if !result.WardValid {
			p.stats.InvalidWards++
		}
		if !result.AreaValid {
			p.stats.InvalidAreas++
		}
		if !result.EnumeratorValid {
			p.stats.InvalidEnumerators++
		}
		if !result.TokenValid {
			p.stats.InvalidTokens++
		}
	case processor.OutcomePromotionSkipped:
		p.stats.Skipped++
	default:
		p.stats.Failed++
	}
}

func (p *PromoteToProduction) Close() error {
	if p.db != nil {
		p.db.Close()
	}
	return nil
}

// PostgresSyncLedger reads the synced_records ledger.
type PostgresSyncLedger struct {
	db *pgxpool.Pool
}

func (l *PostgresSyncLedger) AlreadyPromoted(ctx context.Context, stagingTable, recordID string) (bool, error) {
	var exists bool
	err := l.db.QueryRow(ctx,
		`SELECT EXISTS (
            SELECT 1 FROM synced_records WHERE staging_table = $1 AND record_id = $2
         )`, stagingTable, recordID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("error checking sync ledger for %s/%s: %w", stagingTable, recordID, err)
	}
	return exists, nil
}
