package processor

import (
	"time"

	"github.com/guregu/null"
)

// Geo is the normalized location of a submission. Point is WKT
// "POINT(lng lat)"; all fields are null when the device reported no fix.
type Geo struct {
	Point    null.String `json:"geo_point"`
	Altitude null.Float  `json:"altitude"`
	Accuracy null.Float  `json:"gps_accuracy"`
}

// SubmissionCore carries the fields every staged main record shares,
// including the operator-entered reference candidates that are validated
// later during promotion.
type SubmissionCore struct {
	SubmissionID  string      `json:"submission_id"`
	SurveyKind    string      `json:"survey_kind"`
	SubmittedAt   null.Time   `json:"submitted_at"`
	WardNumber    int         `json:"ward_number"`
	AreaCode      null.String `json:"area_code"`
	EnumeratorID  null.String `json:"enumerator_id"`
	BuildingToken null.String `json:"building_token"`
	Geo
}

// HouseholdRecord is the flattened main row of a household/family submission.
type HouseholdRecord struct {
	SubmissionCore
	HeadName          string      `json:"head_name"`
	HeadPhone         null.String `json:"head_phone"`
	Locality          null.String `json:"locality"`
	MaleMembers       null.Int    `json:"male_members"`
	FemaleMembers     null.Int    `json:"female_members"`
	Religion          null.String `json:"religion"`
	Language          null.String `json:"language"`
	Ethnicity         null.String `json:"ethnicity"`
	HouseOwnership    null.String `json:"house_ownership"`
	LandOwnership     null.String `json:"land_ownership"`
	HouseFoundation   null.String `json:"house_foundation"`
	RoofType          null.String `json:"roof_type"`
	ToiletType        null.String `json:"toilet_type"`
	WaterSource       null.String `json:"water_source"`
	CookingFuel       null.String `json:"cooking_fuel"`
	Electricity       null.String `json:"electricity_source"`
	WasteDisposal     null.String `json:"waste_disposal"`
	IncomeSources     null.String `json:"income_sources"`
	AnnualIncome      null.Float  `json:"annual_income"`
	AnnualExpense     null.Float  `json:"annual_expense"`
	HasLoan           null.Bool   `json:"has_loan"`
	LoanAmount        null.Float  `json:"loan_amount"`
	HasInsurance      null.Bool   `json:"has_insurance"`
	InAgriculture     null.Bool   `json:"in_agriculture"`
	FoodSufficiency   null.String `json:"food_sufficiency"`
	HouseholdPhoto    null.String `json:"household_photo"`
	EnumerationNote   null.String `json:"enumeration_note"`
	SurveyedIndoors   null.Bool   `json:"surveyed_indoors"`
	AbsentHouseholder null.Bool   `json:"absent_householder"`
}

// BusinessRecord is the flattened main row of a business submission.
type BusinessRecord struct {
	SubmissionCore
	BusinessName     string      `json:"business_name"`
	BusinessNature   null.String `json:"business_nature"`
	BusinessType     null.String `json:"business_type"`
	OperatorName     null.String `json:"operator_name"`
	OperatorPhone    null.String `json:"operator_phone"`
	OperatorGender   null.String `json:"operator_gender"`
	Registered       null.Bool   `json:"registered"`
	RegisteredBodies null.String `json:"registered_bodies"`
	PANNumber        null.String `json:"pan_number"`
	Investment       null.Float  `json:"investment"`
	AnnualProfit     null.Float  `json:"annual_profit"`
	PartnerCount     null.Int    `json:"partner_count"`
	MaleEmployees    null.Int    `json:"male_employees"`
	FemaleEmployees  null.Int    `json:"female_employees"`
	HotelAccomType   null.String `json:"hotel_accommodation_type"`
	HotelRoomCount   null.Int    `json:"hotel_room_count"`
	HotelBedCount    null.Int    `json:"hotel_bed_count"`
}

// BuildingRecord is the flattened main row of a building submission.
type BuildingRecord struct {
	SubmissionCore
	OwnerName        string      `json:"owner_name"`
	OwnerPhone       null.String `json:"owner_phone"`
	IsSquatter       null.Bool   `json:"is_squatter"`
	LandOwnership    null.String `json:"land_ownership"`
	BuildingBase     null.String `json:"building_base"`
	RoofType         null.String `json:"roof_type"`
	FloorCount       null.Int    `json:"floor_count"`
	NaturalDisasters null.String `json:"natural_disasters"`
	FamilyCount      null.Int    `json:"family_count"`
	BusinessCount    null.Int    `json:"business_count"`
	BuildingPhoto    null.String `json:"building_photo"`
}

// Crop type tags, one per raw crop array in the household instrument.
const (
	CropTypeFood      = "food"
	CropTypePulse     = "pulse"
	CropTypeOilseed   = "oilseed"
	CropTypeVegetable = "vegetable"
	CropTypeFruit     = "fruit"
	CropTypeSpice     = "spice"
	CropTypeCash      = "cash"
)

// CropRecord is one crop row. TreeCount is populated only for fruit and
// cash crops; the instrument does not ask it for the other types.
type CropRecord struct {
	ChildID    string      `json:"child_id"`
	ParentID   string      `json:"parent_id"`
	CropType   string      `json:"crop_type"`
	Name       string      `json:"name"`
	Area       null.Float  `json:"area_sq_meters"`
	Production null.Float  `json:"production_kg"`
	Sales      null.Float  `json:"sales_kg"`
	Revenue    null.Float  `json:"revenue"`
	TreeCount  null.Int    `json:"tree_count"`
	Remarks    null.String `json:"remarks"`
}

type AnimalRecord struct {
	ChildID   string     `json:"child_id"`
	ParentID  string     `json:"parent_id"`
	Name      string     `json:"name"`
	Count     null.Int   `json:"count"`
	SoldCount null.Int   `json:"sold_count"`
	Revenue   null.Float `json:"revenue"`
}

type AnimalProductRecord struct {
	ChildID        string      `json:"child_id"`
	ParentID       string      `json:"parent_id"`
	Name           string      `json:"name"`
	Unit           null.String `json:"unit"`
	Production     null.Float  `json:"production"`
	Sales          null.Float  `json:"sales"`
	Revenue        null.Float  `json:"revenue"`
	MonthsProduced null.Int    `json:"months_produced"`
}

type LandRecord struct {
	ChildID     string      `json:"child_id"`
	ParentID    string      `json:"parent_id"`
	WardNumber  null.Int    `json:"ward_number"`
	Area        null.Float  `json:"area_sq_meters"`
	Ownership   null.String `json:"ownership"`
	IsIrrigated null.Bool   `json:"is_irrigated"`
}

// IndividualRecord is one household member. The health, education and
// occupation columns are filled from the matching sub-record of the same
// submission when one exists; they stay null otherwise.
type IndividualRecord struct {
	ChildID      string      `json:"child_id"`
	ParentID     string      `json:"parent_id"`
	Name         string      `json:"name"`
	Gender       null.String `json:"gender"`
	Age          null.Int    `json:"age"`
	Relation     null.String `json:"relation"`
	MotherTongue null.String `json:"mother_tongue"`
	Citizenship  null.String `json:"citizenship"`

	HealthCondition   null.String `json:"health_condition"`
	HasChronicDisease null.String `json:"has_chronic_disease"`
	ChronicDisease    null.String `json:"chronic_disease"`
	DisabilityKind    null.String `json:"disability_kind"`

	LiteracyStatus  null.String `json:"literacy_status"`
	SchoolingStatus null.String `json:"schooling_status"`
	EducationLevel  null.String `json:"education_level"`

	Occupation    null.String `json:"occupation"`
	WorkMonths    null.Int    `json:"work_months"`
	SkillTraining null.String `json:"skill_training"`

	AliveSons      null.Int `json:"alive_sons"`
	AliveDaughters null.Int `json:"alive_daughters"`
}

type DeathRecord struct {
	ChildID      string      `json:"child_id"`
	ParentID     string      `json:"parent_id"`
	Name         string      `json:"name"`
	Gender       null.String `json:"gender"`
	Age          null.Int    `json:"age"`
	Cause        null.String `json:"cause"`
	FertileDeath null.Bool   `json:"fertile_death"`
}

// BuildingFamilyRecord links a family living in a surveyed building.
type BuildingFamilyRecord struct {
	ChildID  string      `json:"child_id"`
	ParentID string      `json:"parent_id"`
	HeadName string      `json:"head_name"`
	Phone    null.String `json:"phone"`
}

// BuildingBusinessRecord links a business operating in a surveyed building.
type BuildingBusinessRecord struct {
	ChildID      string      `json:"child_id"`
	ParentID     string      `json:"parent_id"`
	BusinessName string      `json:"business_name"`
	OperatorName null.String `json:"operator_name"`
}

// RecordSet is the output of one entity parser: exactly one main record for
// the submission's kind plus its child rows. Consumers must write the main
// record before any children.
type RecordSet struct {
	Kind string `json:"kind"`

	Household *HouseholdRecord `json:"household,omitempty"`
	Business  *BusinessRecord  `json:"business,omitempty"`
	Building  *BuildingRecord  `json:"building,omitempty"`

	Crops              []CropRecord             `json:"crops,omitempty"`
	Animals            []AnimalRecord           `json:"animals,omitempty"`
	AnimalProducts     []AnimalProductRecord    `json:"animal_products,omitempty"`
	Lands              []LandRecord             `json:"lands,omitempty"`
	Individuals        []IndividualRecord       `json:"individuals,omitempty"`
	Deaths             []DeathRecord            `json:"deaths,omitempty"`
	BuildingFamilies   []BuildingFamilyRecord   `json:"building_families,omitempty"`
	BuildingBusinesses []BuildingBusinessRecord `json:"building_businesses,omitempty"`
}

// Core returns the shared submission fields of whichever main record the set
// carries.
func (rs *RecordSet) Core() *SubmissionCore {
	switch {
	case rs.Household != nil:
		return &rs.Household.SubmissionCore
	case rs.Business != nil:
		return &rs.Business.SubmissionCore
	case rs.Building != nil:
		return &rs.Building.SubmissionCore
	}
	return nil
}

// SubmissionID returns the owning submission's identifier, or "" when the
// set has no main record.
func (rs *RecordSet) SubmissionID() string {
	if core := rs.Core(); core != nil {
		return core.SubmissionID
	}
	return ""
}

// Promotion outcomes, reported by the sync engine for every record set it
// sees.
const (
	OutcomePromoted         = "promoted"
	OutcomePromotionSkipped = "promotion_skipped"
	OutcomeValidationFailed = "validation_failed"
	OutcomeFailed           = "failed"
)

// SyncResult is what the promotion engine forwards downstream after handling
// one record set. The dashboard's invalid-record counters are built from the
// validity flags.
type SyncResult struct {
	SubmissionID    string    `json:"submission_id"`
	SurveyKind      string    `json:"survey_kind"`
	Outcome         string    `json:"outcome"`
	WardValid       bool      `json:"is_ward_valid"`
	AreaValid       bool      `json:"is_area_valid"`
	EnumeratorValid bool      `json:"is_enumerator_valid"`
	TokenValid      bool      `json:"is_building_token_valid"`
	Error           string    `json:"error,omitempty"`
	CompletedAt     time.Time `json:"completed_at"`
}
