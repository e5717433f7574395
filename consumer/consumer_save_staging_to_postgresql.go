package consumer

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"time"

	_ "github.com/lib/pq"
	"github.com/palikaops/survey-pipeline/processor"
)

// SaveStagingToPostgreSQL writes parsed record sets into the staging tables.
// Staging is idempotent-overwrite: re-ingesting a submission updates the
// existing rows in place, keyed by submission_id / child_id. The main row is
// written before any children, inside one transaction per record set.
type SaveStagingToPostgreSQL struct {
	db         *sql.DB
	processors []processor.Processor
}

const stagingSchema = `
CREATE TABLE IF NOT EXISTS staging_households (
    submission_id      TEXT PRIMARY KEY,
    survey_kind        TEXT NOT NULL,
    submitted_at       TIMESTAMPTZ,
    ward_number        INTEGER NOT NULL,
    area_code          TEXT,
    enumerator_id      TEXT,
    building_token     TEXT,
    geo_point          TEXT,
    altitude           DOUBLE PRECISION,
    gps_accuracy       DOUBLE PRECISION,
    head_name          TEXT NOT NULL,
    head_phone         TEXT,
    locality           TEXT,
    male_members       INTEGER,
    female_members     INTEGER,
    religion           TEXT,
    language           TEXT,
    ethnicity          TEXT,
    house_ownership    TEXT,
    land_ownership     TEXT,
    house_foundation   TEXT,
    roof_type          TEXT,
    toilet_type        TEXT,
    water_source       TEXT,
    cooking_fuel       TEXT,
    electricity_source TEXT,
    waste_disposal     TEXT,
    income_sources     TEXT,
    annual_income      DOUBLE PRECISION,
    annual_expense     DOUBLE PRECISION,
    has_loan           BOOLEAN,
    loan_amount        DOUBLE PRECISION,
    has_insurance      BOOLEAN,
    in_agriculture     BOOLEAN,
    food_sufficiency   TEXT,
    household_photo    TEXT,
    enumeration_note   TEXT,
    surveyed_indoors   BOOLEAN,
    absent_householder BOOLEAN,
    updated_at         TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS staging_businesses (
    submission_id   TEXT PRIMARY KEY,
    survey_kind     TEXT NOT NULL,
    submitted_at    TIMESTAMPTZ,
    ward_number     INTEGER NOT NULL,
    area_code       TEXT,
    enumerator_id   TEXT,
    building_token  TEXT,
    geo_point       TEXT,
    altitude        DOUBLE PRECISION,
    gps_accuracy    DOUBLE PRECISION,
    business_name   TEXT NOT NULL,
    business_nature TEXT,
    business_type   TEXT,
    operator_name   TEXT,
    operator_phone  TEXT,
    operator_gender TEXT,
    registered      BOOLEAN,
    registered_bodies TEXT,
    pan_number      TEXT,
    investment      DOUBLE PRECISION,
    annual_profit   DOUBLE PRECISION,
    partner_count   INTEGER,
    male_employees  INTEGER,
    female_employees INTEGER,
    hotel_accommodation_type TEXT,
    hotel_room_count INTEGER,
    hotel_bed_count  INTEGER,
    updated_at      TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS staging_buildings (
    submission_id     TEXT PRIMARY KEY,
    survey_kind       TEXT NOT NULL,
    submitted_at      TIMESTAMPTZ,
    ward_number       INTEGER NOT NULL,
    area_code         TEXT,
    enumerator_id     TEXT,
    building_token    TEXT,
    geo_point         TEXT,
    altitude          DOUBLE PRECISION,
    gps_accuracy      DOUBLE PRECISION,
    owner_name        TEXT NOT NULL,
    owner_phone       TEXT,
    is_squatter       BOOLEAN,
    land_ownership    TEXT,
    building_base     TEXT,
    roof_type         TEXT,
    floor_count       INTEGER,
    natural_disasters TEXT,
    family_count      INTEGER,
    business_count    INTEGER,
    building_photo    TEXT,
    updated_at        TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS staging_household_crops (
    child_id       TEXT PRIMARY KEY,
    parent_id      TEXT NOT NULL,
    crop_type      TEXT NOT NULL,
    name           TEXT NOT NULL,
    area_sq_meters DOUBLE PRECISION,
    production_kg  DOUBLE PRECISION,
    sales_kg       DOUBLE PRECISION,
    revenue        DOUBLE PRECISION,
    tree_count     INTEGER,
    remarks        TEXT
);

CREATE TABLE IF NOT EXISTS staging_household_animals (
    child_id   TEXT PRIMARY KEY,
    parent_id  TEXT NOT NULL,
    name       TEXT NOT NULL,
    count      INTEGER,
    sold_count INTEGER,
    revenue    DOUBLE PRECISION
);

CREATE TABLE IF NOT EXISTS staging_household_animal_products (
    child_id        TEXT PRIMARY KEY,
    parent_id       TEXT NOT NULL,
    name            TEXT NOT NULL,
    unit            TEXT,
    production      DOUBLE PRECISION,
    sales           DOUBLE PRECISION,
    revenue         DOUBLE PRECISION,
    months_produced INTEGER
);

CREATE TABLE IF NOT EXISTS staging_household_lands (
    child_id       TEXT PRIMARY KEY,
    parent_id      TEXT NOT NULL,
    ward_number    INTEGER,
    area_sq_meters DOUBLE PRECISION,
    ownership      TEXT,
    is_irrigated   BOOLEAN
);

CREATE TABLE IF NOT EXISTS staging_individuals (
    child_id            TEXT PRIMARY KEY,
    parent_id           TEXT NOT NULL,
    name                TEXT NOT NULL,
    gender              TEXT,
    age                 INTEGER,
    relation            TEXT,
    mother_tongue       TEXT,
    citizenship         TEXT,
    health_condition    TEXT,
    has_chronic_disease TEXT,
    chronic_disease     TEXT,
    disability_kind     TEXT,
    literacy_status     TEXT,
    schooling_status    TEXT,
    education_level     TEXT,
    occupation          TEXT,
    work_months         INTEGER,
    skill_training      TEXT,
    alive_sons          INTEGER,
    alive_daughters     INTEGER
);

CREATE TABLE IF NOT EXISTS staging_deaths (
    child_id      TEXT PRIMARY KEY,
    parent_id     TEXT NOT NULL,
    name          TEXT NOT NULL,
    gender        TEXT,
    age           INTEGER,
    cause         TEXT,
    fertile_death BOOLEAN
);

CREATE TABLE IF NOT EXISTS staging_building_families (
    child_id  TEXT PRIMARY KEY,
    parent_id TEXT NOT NULL,
    head_name TEXT NOT NULL,
    phone     TEXT
);

CREATE TABLE IF NOT EXISTS staging_building_businesses (
    child_id      TEXT PRIMARY KEY,
    parent_id     TEXT NOT NULL,
    business_name TEXT NOT NULL,
    operator_name TEXT
);

CREATE INDEX IF NOT EXISTS idx_staging_crops_parent ON staging_household_crops(parent_id);
CREATE INDEX IF NOT EXISTS idx_staging_animals_parent ON staging_household_animals(parent_id);
CREATE INDEX IF NOT EXISTS idx_staging_individuals_parent ON staging_individuals(parent_id);
CREATE INDEX IF NOT EXISTS idx_staging_deaths_parent ON staging_deaths(parent_id);
`

func NewSaveStagingToPostgreSQL(config map[string]interface{}) (*SaveStagingToPostgreSQL, error) {
	connStr, ok := config["connection_string"].(string)
	if !ok {
		return nil, fmt.Errorf("connection_string is required")
	}

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("error connecting to PostgreSQL: %w", err)
	}

	maxOpen := 25
	if v, ok := config["max_open_conns"].(int); ok {
		maxOpen = v
	}
	maxIdle := 5
	if v, ok := config["max_idle_conns"].(int); ok {
		maxIdle = v
	}
	db.SetMaxOpenConns(maxOpen)
	db.SetMaxIdleConns(maxIdle)
	db.SetConnMaxLifetime(time.Hour)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("error pinging PostgreSQL: %w", err)
	}

	if _, err := db.Exec(stagingSchema); err != nil {
		return nil, fmt.Errorf("error initializing staging schema: %w", err)
	}

	return &SaveStagingToPostgreSQL{db: db}, nil
}

func (s *SaveStagingToPostgreSQL) Subscribe(proc processor.Processor) {
	s.processors = append(s.processors, proc)
}

func (s *SaveStagingToPostgreSQL) Process(ctx context.Context, msg processor.Message) error {
	payload, ok := msg.Payload.([]byte)
	if !ok {
		return fmt.Errorf("expected []byte payload, got %T", msg.Payload)
	}

	var rs processor.RecordSet
	if err := json.Unmarshal(payload, &rs); err != nil {
		return fmt.Errorf("error unmarshaling record set: %w", err)
	}
	if rs.Core() == nil {
		return fmt.Errorf("record set has no main record")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("error starting transaction: %w", err)
	}
	defer tx.Rollback()

	if err := s.upsertRecordSet(ctx, tx, &rs); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("error committing staging transaction: %w", err)
	}

	log.Printf("Staged %s submission %s (%d children)",
		rs.Kind, rs.SubmissionID(), childCount(&rs))

	return processor.ForwardToProcessors(ctx, &rs, s.processors)
}

func childCount(rs *processor.RecordSet) int {
	return len(rs.Crops) + len(rs.Animals) + len(rs.AnimalProducts) + len(rs.Lands) +
		len(rs.Individuals) + len(rs.Deaths) + len(rs.BuildingFamilies) + len(rs.BuildingBusinesses)
}

// upsertRecordSet writes the main row first, then every child row. Children
// must never exist without their parent, so the order is load-bearing.
func (s *SaveStagingToPostgreSQL) upsertRecordSet(ctx context.Context, tx *sql.Tx, rs *processor.RecordSet) error {
	switch {
	case rs.Household != nil:
		if err := upsertStagedHousehold(ctx, tx, rs.Household); err != nil {
			return fmt.Errorf("error upserting staged household %s: %w", rs.SubmissionID(), err)
		}
	case rs.Business != nil:
		if err := upsertStagedBusiness(ctx, tx, rs.Business); err != nil {
			return fmt.Errorf("error upserting staged business %s: %w", rs.SubmissionID(), err)
		}
	case rs.Building != nil:
		if err := upsertStagedBuilding(ctx, tx, rs.Building); err != nil {
			return fmt.Errorf("error upserting staged building %s: %w", rs.SubmissionID(), err)
		}
	}

	for _, c := range rs.Crops {
		if err := upsertStagedCrop(ctx, tx, &c); err != nil {
			return fmt.Errorf("error upserting staged crop %s: %w", c.ChildID, err)
		}
	}
	for _, a := range rs.Animals {
		if err := upsertStagedAnimal(ctx, tx, &a); err != nil {
			return fmt.Errorf("error upserting staged animal %s: %w", a.ChildID, err)
		}
	}
	for _, ap := range rs.AnimalProducts {
		if err := upsertStagedAnimalProduct(ctx, tx, &ap); err != nil {
			return fmt.Errorf("error upserting staged animal product %s: %w", ap.ChildID, err)
		}
	}
	for _, l := range rs.Lands {
		if err := upsertStagedLand(ctx, tx, &l); err != nil {
			return fmt.Errorf("error upserting staged land %s: %w", l.ChildID, err)
		}
	}
	for _, ind := range rs.Individuals {
		if err := upsertStagedIndividual(ctx, tx, &ind); err != nil {
			return fmt.Errorf("error upserting staged individual %s: %w", ind.ChildID, err)
		}
	}
	for _, d := range rs.Deaths {
		if err := upsertStagedDeath(ctx, tx, &d); err != nil {
			return fmt.Errorf("error upserting staged death %s: %w", d.ChildID, err)
		}
	}
	for _, f := range rs.BuildingFamilies {
		if err := upsertStagedBuildingFamily(ctx, tx, &f); err != nil {
			return fmt.Errorf("error upserting staged building family %s: %w", f.ChildID, err)
		}
	}
	for _, b := range rs.BuildingBusinesses {
		if err := upsertStagedBuildingBusiness(ctx, tx, &b); err != nil {
			return fmt.Errorf("error upserting staged building business %s: %w", b.ChildID, err)
		}
	}

	return nil
}

func upsertStagedHousehold(ctx context.Context, tx *sql.Tx, h *processor.HouseholdRecord) error {
	_, err := tx.ExecContext(ctx, `
        INSERT INTO staging_households (
            submission_id, survey_kind, submitted_at, ward_number, area_code,
            enumerator_id, building_token, geo_point, altitude, gps_accuracy,
            head_name, head_phone, locality, male_members, female_members,
            religion, language, ethnicity, house_ownership, land_ownership,
            house_foundation, roof_type, toilet_type, water_source,
            cooking_fuel, electricity_source, waste_disposal, income_sources,
            annual_income, annual_expense, has_loan, loan_amount,
            has_insurance, in_agriculture, food_sufficiency, household_photo,
            enumeration_note, surveyed_indoors, absent_householder, updated_at
        ) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,
                  $18,$19,$20,$21,$22,$23,$24,$25,$26,$27,$28,$29,$30,$31,$32,
                  $33,$34,$35,$36,$37,$38,$39,NOW())
        ON CONFLICT (submission_id) DO UPDATE SET
            survey_kind = EXCLUDED.survey_kind,
            submitted_at = EXCLUDED.submitted_at,
            ward_number = EXCLUDED.ward_number,
            area_code = EXCLUDED.area_code,
            enumerator_id = EXCLUDED.enumerator_id,
            building_token = EXCLUDED.building_token,
            geo_point = EXCLUDED.geo_point,
            altitude = EXCLUDED.altitude,
            gps_accuracy = EXCLUDED.gps_accuracy,
            head_name = EXCLUDED.head_name,
            head_phone = EXCLUDED.head_phone,
            locality = EXCLUDED.locality,
            male_members = EXCLUDED.male_members,
            female_members = EXCLUDED.female_members,
            religion = EXCLUDED.religion,
            language = EXCLUDED.language,
            ethnicity = EXCLUDED.ethnicity,
            house_ownership = EXCLUDED.house_ownership,
            land_ownership = EXCLUDED.land_ownership,
            house_foundation = EXCLUDED.house_foundation,
            roof_type = EXCLUDED.roof_type,
            toilet_type = EXCLUDED.toilet_type,
            water_source = EXCLUDED.water_source,
            cooking_fuel = EXCLUDED.cooking_fuel,
            electricity_source = EXCLUDED.electricity_source,
            waste_disposal = EXCLUDED.waste_disposal,
            income_sources = EXCLUDED.income_sources,
            annual_income = EXCLUDED.annual_income,
            annual_expense = EXCLUDED.annual_expense,
            has_loan = EXCLUDED.has_loan,
            loan_amount = EXCLUDED.loan_amount,
            has_insurance = EXCLUDED.has_insurance,
            in_agriculture = EXCLUDED.in_agriculture,
            food_sufficiency = EXCLUDED.food_sufficiency,
            household_photo = EXCLUDED.household_photo,
            enumeration_note = EXCLUDED.enumeration_note,
            surveyed_indoors = EXCLUDED.surveyed_indoors,
            absent_householder = EXCLUDED.absent_householder,
            updated_at = NOW()`,
		h.SubmissionID, h.SurveyKind, h.SubmittedAt, h.WardNumber, h.AreaCode,
		h.EnumeratorID, h.BuildingToken, h.Point, h.Altitude, h.Accuracy,
		h.HeadName, h.HeadPhone, h.Locality, h.MaleMembers, h.FemaleMembers,
		h.Religion, h.Language, h.Ethnicity, h.HouseOwnership, h.LandOwnership,
		h.HouseFoundation, h.RoofType, h.ToiletType, h.WaterSource,
		h.CookingFuel, h.Electricity, h.WasteDisposal, h.IncomeSources,
		h.AnnualIncome, h.AnnualExpense, h.HasLoan, h.LoanAmount,
		h.HasInsurance, h.InAgriculture, h.FoodSufficiency, h.HouseholdPhoto,
		h.EnumerationNote, h.SurveyedIndoors, h.AbsentHouseholder,
	)
	return err
}

func upsertStagedBusiness(ctx context.Context, tx *sql.Tx, b *processor.BusinessRecord) error {
	_, err := tx.ExecContext(ctx, `
        INSERT INTO staging_businesses (
            submission_id, survey_kind, submitted_at, ward_number, area_code,
            enumerator_id, building_token, geo_point, altitude, gps_accuracy,
            business_name, business_nature, business_type, operator_name,
            operator_phone, operator_gender, registered, registered_bodies,
            pan_number, investment, annual_profit, partner_count,
            male_employees, female_employees, hotel_accommodation_type,
            hotel_room_count, hotel_bed_count, updated_at
        ) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,
                  $18,$19,$20,$21,$22,$23,$24,$25,$26,$27,NOW())
        ON CONFLICT (submission_id) DO UPDATE SET
            survey_kind = EXCLUDED.survey_kind,
            submitted_at = EXCLUDED.submitted_at,
            ward_number = EXCLUDED.ward_number,
            area_code = EXCLUDED.area_code,
            enumerator_id = EXCLUDED.enumerator_id,
            building_token = EXCLUDED.building_token,
            geo_point = EXCLUDED.geo_point,
            altitude = EXCLUDED.altitude,
            gps_accuracy = EXCLUDED.gps_accuracy,
            business_name = EXCLUDED.business_name,
            business_nature = EXCLUDED.business_nature,
            business_type = EXCLUDED.business_type,
            operator_name = EXCLUDED.operator_name,
            operator_phone = EXCLUDED.operator_phone,
            operator_gender = EXCLUDED.operator_gender,
            registered = EXCLUDED.registered,
            registered_bodies = EXCLUDED.registered_bodies,
            pan_number = EXCLUDED.pan_number,
            investment = EXCLUDED.investment,
            annual_profit = EXCLUDED.annual_profit,
            partner_count = EXCLUDED.partner_count,
            male_employees = EXCLUDED.male_employees,
            female_employees = EXCLUDED.female_employees,
            hotel_accommodation_type = EXCLUDED.hotel_accommodation_type,
            hotel_room_count = EXCLUDED.hotel_room_count,
            hotel_bed_count = EXCLUDED.hotel_bed_count,
            updated_at = NOW()`,
		b.SubmissionID, b.SurveyKind, b.SubmittedAt, b.WardNumber, b.AreaCode,
		b.EnumeratorID, b.BuildingToken, b.Point, b.Altitude, b.Accuracy,
		b.BusinessName, b.BusinessNature, b.BusinessType, b.OperatorName,
		b.OperatorPhone, b.OperatorGender, b.Registered, b.RegisteredBodies,
		b.PANNumber, b.Investment, b.AnnualProfit, b.PartnerCount,
		b.MaleEmployees, b.FemaleEmployees, b.HotelAccomType,
		b.HotelRoomCount, b.HotelBedCount,
	)
	return err
}

func upsertStagedBuilding(ctx context.Context, tx *sql.Tx, b *processor.BuildingRecord) error {
	_, err := tx.ExecContext(ctx, `
        INSERT INTO staging_buildings (
            submission_id, survey_kind, submitted_at, ward_number, area_code,
            enumerator_id, building_token, geo_point, altitude, gps_accuracy,
            owner_name, owner_phone, is_squatter, land_ownership,
            building_base, roof_type, floor_count, natural_disasters,
            family_count, business_count, building_photo, updated_at
        ) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,
                  $18,$19,$20,$21,NOW())
        ON CONFLICT (submission_id) DO UPDATE SET
            survey_kind = EXCLUDED.survey_kind,
            submitted_at = EXCLUDED.submitted_at,
            ward_number = EXCLUDED.ward_number,
            area_code = EXCLUDED.area_code,
            enumerator_id = EXCLUDED.enumerator_id,
            building_token = EXCLUDED.building_token,
            geo_point = EXCLUDED.geo_point,
            altitude = EXCLUDED.altitude,
            gps_accuracy = EXCLUDED.gps_accuracy,
            owner_name = EXCLUDED.owner_name,
            owner_phone = EXCLUDED.owner_phone,
            is_squatter = EXCLUDED.is_squatter,
            land_ownership = EXCLUDED.land_ownership,
            building_base = EXCLUDED.building_base,
            roof_type = EXCLUDED.roof_type,
            floor_count = EXCLUDED.floor_count,
            natural_disasters = EXCLUDED.natural_disasters,
            family_count = EXCLUDED.family_count,
            business_count = EXCLUDED.business_count,
            building_photo = EXCLUDED.building_photo,
            updated_at = NOW()`,
		b.SubmissionID, b.SurveyKind, b.SubmittedAt, b.WardNumber, b.AreaCode,
		b.EnumeratorID, b.BuildingToken, b.Point, b.Altitude, b.Accuracy,
		b.OwnerName, b.OwnerPhone, b.IsSquatter, b.LandOwnership,
		b.BuildingBase, b.RoofType, b.FloorCount, b.NaturalDisasters,
		b.FamilyCount, b.BusinessCount, b.BuildingPhoto,
	)
	return err
}

func upsertStagedCrop(ctx context.Context, tx *sql.Tx, c *processor.CropRecord) error {
	_, err := tx.ExecContext(ctx, `
        INSERT INTO staging_household_crops (
            child_id, parent_id, crop_type, name, area_sq_meters,
            production_kg, sales_kg, revenue, tree_count, remarks
        ) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
        ON CONFLICT (child_id) DO UPDATE SET
            crop_type = EXCLUDED.crop_type,
            name = EXCLUDED.name,
            area_sq_meters = EXCLUDED.area_sq_meters,
            production_kg = EXCLUDED.production_kg,
            sales_kg = EXCLUDED.sales_kg,
            revenue = EXCLUDED.revenue,
            tree_count = EXCLUDED.tree_count,
            remarks = EXCLUDED.remarks`,
		c.ChildID, c.ParentID, c.CropType, c.Name, c.Area,
		c.Production, c.Sales, c.Revenue, c.TreeCount, c.Remarks,
	)
	return err
}

func upsertStagedAnimal(ctx context.Context, tx *sql.Tx, a *processor.AnimalRecord) error {
	_, err := tx.ExecContext(ctx, `
        INSERT INTO staging_household_animals (
            child_id, parent_id, name, count, sold_count, revenue
        ) VALUES ($1,$2,$3,$4,$5,$6)
        ON CONFLICT (child_id) DO UPDATE SET
            name = EXCLUDED.name,
            count = EXCLUDED.count,
            sold_count = EXCLUDED.sold_count,
            revenue = EXCLUDED.revenue`,
		a.ChildID, a.ParentID, a.Name, a.Count, a.SoldCount, a.Revenue,
	)
	return err
}

func upsertStagedAnimalProduct(ctx context.Context, tx *sql.Tx, p *processor.AnimalProductRecord) error {
	_, err := tx.ExecContext(ctx, `
        INSERT INTO staging_household_animal_products (
            child_id, parent_id, name, unit, production, sales, revenue, months_produced
        ) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
        ON CONFLICT (child_id) DO UPDATE SET
            name = EXCLUDED.name,
            unit = EXCLUDED.unit,
            production = EXCLUDED.production,
            sales = EXCLUDED.sales,
            revenue = EXCLUDED.revenue,
            months_produced = EXCLUDED.months_produced`,
		p.ChildID, p.ParentID, p.Name, p.Unit, p.Production, p.Sales, p.Revenue, p.MonthsProduced,
	)
	return err
}

func upsertStagedLand(ctx context.Context, tx *sql.Tx, l *processor.LandRecord) error {
	_, err := tx.ExecContext(ctx, `
        INSERT INTO staging_household_lands (
            child_id, parent_id, ward_number, area_sq_meters, ownership, is_irrigated
        ) VALUES ($1,$2,$3,$4,$5,$6)
        ON CONFLICT (child_id) DO UPDATE SET
            ward_number = EXCLUDED.ward_number,
            area_sq_meters = EXCLUDED.area_sq_meters,
            ownership = EXCLUDED.ownership,
            is_irrigated = EXCLUDED.is_irrigated`,
		l.ChildID, l.ParentID, l.WardNumber, l.Area, l.Ownership, l.IsIrrigated,
	)
	return err
}

func upsertStagedIndividual(ctx context.Context, tx *sql.Tx, i *processor.IndividualRecord) error {
	_, err := tx.ExecContext(ctx, `
        INSERT INTO staging_individuals (
            child_id, parent_id, name, gender, age, relation, mother_tongue,
            citizenship, health_condition, has_chronic_disease,
            chronic_disease, disability_kind, literacy_status,
            schooling_status, education_level, occupation, work_months,
            skill_training, alive_sons, alive_daughters
        ) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20)
        ON CONFLICT (child_id) DO UPDATE SET
            name = EXCLUDED.name,
            gender = EXCLUDED.gender,
            age = EXCLUDED.age,
            relation = EXCLUDED.relation,
            mother_tongue = EXCLUDED.mother_tongue,
            citizenship = EXCLUDED.citizenship,
            health_condition = EXCLUDED.health_condition,
            has_chronic_disease = EXCLUDED.has_chronic_disease,
            chronic_disease = EXCLUDED.chronic_disease,
            disability_kind = EXCLUDED.disability_kind,
            literacy_status = EXCLUDED.literacy_status,
            schooling_status = EXCLUDED.schooling_status,
            education_level = EXCLUDED.education_level,
            occupation = EXCLUDED.occupation,
            work_months = EXCLUDED.work_months,
            skill_training = EXCLUDED.skill_training,
            alive_sons = EXCLUDED.alive_sons,
            alive_daughters = EXCLUDED.alive_daughters`,
		i.ChildID, i.ParentID, i.Name, i.Gender, i.Age, i.Relation, i.MotherTongue,
		i.Citizenship, i.HealthCondition, i.HasChronicDisease,
		i.ChronicDisease, i.DisabilityKind, i.LiteracyStatus,
		i.SchoolingStatus, i.EducationLevel, i.Occupation, i.WorkMonths,
		i.SkillTraining, i.AliveSons, i.AliveDaughters,
	)
	return err
}

func upsertStagedDeath(ctx context.Context, tx *sql.Tx, d *processor.DeathRecord) error {
	_, err := tx.ExecContext(ctx, `
        INSERT INTO staging_deaths (
            child_id, parent_id, name, gender, age, cause, fertile_death
        ) VALUES ($1,$2,$3,$4,$5,$6,$7)
        ON CONFLICT (child_id) DO UPDATE SET
            name = EXCLUDED.name,
            gender = EXCLUDED.gender,
            age = EXCLUDED.age,
            cause = EXCLUDED.cause,
            fertile_death = EXCLUDED.fertile_death`,
		d.ChildID, d.ParentID, d.Name, d.Gender, d.Age, d.Cause, d.FertileDeath,
	)
	return err
}

func upsertStagedBuildingFamily(ctx context.Context, tx *sql.Tx, f *processor.BuildingFamilyRecord) error {
	_, err := tx.ExecContext(ctx, `
        INSERT INTO staging_building_families (child_id, parent_id, head_name, phone)
        VALUES ($1,$2,$3,$4)
        ON CONFLICT (child_id) DO UPDATE SET
            head_name = EXCLUDED.head_name,
            phone = EXCLUDED.phone`,
		f.ChildID, f.ParentID, f.HeadName, f.Phone,
	)
	return err
}

func upsertStagedBuildingBusiness(ctx context.Context, tx *sql.Tx, b *processor.BuildingBusinessRecord) error {
	_, err := tx.ExecContext(ctx, `
        INSERT INTO staging_building_businesses (child_id, parent_id, business_name, operator_name)
        VALUES ($1,$2,$3,$4)
        ON CONFLICT (child_id) DO UPDATE SET
            business_name = EXCLUDED.business_name,
            operator_name = EXCLUDED.operator_name`,
		b.ChildID, b.ParentID, b.BusinessName, b.OperatorName,
	)
	return err
}

func (s *SaveStagingToPostgreSQL) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
