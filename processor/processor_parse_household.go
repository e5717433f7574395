package processor

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/guregu/null"
	"github.com/tidwall/gjson"
)

// ParseHousehold flattens raw household/family submissions into a
// HouseholdRecord plus crop, animal, animal-product, land, individual and
// death child rows.
type ParseHousehold struct {
	processors []Processor
	mu         sync.Mutex
	stats      struct {
		ProcessedSubmissions uint64
		FailedSubmissions    uint64
		AmbiguousJoins       uint64
		UnmatchedSubRecords  uint64
		LastSubmissionTime   time.Time
	}
}

func NewParseHousehold(config map[string]interface{}) (*ParseHousehold, error) {
	return &ParseHousehold{}, nil
}

func (p *ParseHousehold) Subscribe(processor Processor) {
	p.processors = append(p.processors, processor)
}

func (p *ParseHousehold) Process(ctx context.Context, msg Message) error {
	raw, err := ExtractRawSubmission(msg)
	if err != nil {
		return err
	}

	rs, joins, err := ParseHouseholdSubmission(raw)
	if err != nil {
		p.mu.Lock()
		p.stats.FailedSubmissions++
		p.mu.Unlock()
		return fmt.Errorf("error parsing household submission: %w", err)
	}

	p.mu.Lock()
	p.stats.ProcessedSubmissions++
	p.stats.AmbiguousJoins += joins.Ambiguous
	p.stats.UnmatchedSubRecords += joins.Unmatched
	p.stats.LastSubmissionTime = time.Now()
	p.mu.Unlock()

	if joins.Ambiguous > 0 {
		log.Printf("submission %s: %d ambiguous name+age joins (first match kept)",
			rs.SubmissionID(), joins.Ambiguous)
	}

	return ForwardToProcessors(ctx, rs, p.processors)
}

// JoinStats counts the outcome of the best-effort name+age joins between
// individuals and their health/education/occupation sub-records.
type JoinStats struct {
	Ambiguous uint64
	Unmatched uint64
}

// cropGroups lists the raw repeat-group path for each crop type. Fruit and
// cash crops carry a tree count; the instrument does not ask it for the
// others.
var cropGroups = []struct {
	path     string
	cropType string
	hasTrees bool
}{
	{"agriculture.food_crops", CropTypeFood, false},
	{"agriculture.pulse_crops", CropTypePulse, false},
	{"agriculture.oilseed_crops", CropTypeOilseed, false},
	{"agriculture.vegetable_crops", CropTypeVegetable, false},
	{"agriculture.fruit_crops", CropTypeFruit, true},
	{"agriculture.spice_crops", CropTypeSpice, false},
	{"agriculture.cash_crops", CropTypeCash, true},
}

// ParseHouseholdSubmission parses one raw household payload. It fails only
// on missing required fields (submission id, ward number); absent optional
// sub-trees yield empty child lists.
func ParseHouseholdSubmission(raw []byte) (*RecordSet, JoinStats, error) {
	var joins JoinStats
	root := gjson.ParseBytes(raw)

	core, err := parseSubmissionCore(root, SurveyKindHousehold)
	if err != nil {
		return nil, joins, err
	}

	headName := root.Get("id.house_head_name").String()
	if headName == "" {
		return nil, joins, fmt.Errorf("submission %s: missing required field id.house_head_name", core.SubmissionID)
	}

	household := &HouseholdRecord{
		SubmissionCore:    core,
		HeadName:          headName,
		HeadPhone:         nullString(root.Get("id.house_head_phone")),
		Locality:          nullString(root.Get("id.locality")),
		MaleMembers:       nullInt(root.Get("id.male_members")),
		FemaleMembers:     nullInt(root.Get("id.female_members")),
		Religion:          nullDecoded(root.Get("id.religion"), ReligionChoices),
		Language:          nullDecoded(root.Get("id.language"), LanguageChoices),
		Ethnicity:         nullDecoded(root.Get("id.ethnicity"), EthnicityChoices),
		HouseOwnership:    nullDecoded(root.Get("house.ownership"), HouseOwnershipChoices),
		LandOwnership:     nullDecoded(root.Get("house.land_ownership"), LandOwnershipChoices),
		HouseFoundation:   nullDecoded(root.Get("house.foundation"), FoundationChoices),
		RoofType:          nullDecoded(root.Get("house.roof_type"), RoofTypeChoices),
		ToiletType:        nullDecoded(root.Get("water_sanitation.toilet_type"), ToiletTypeChoices),
		WaterSource:       nullDecodedMulti(root.Get("water_sanitation.water_source"), WaterSourceChoices),
		CookingFuel:       nullDecoded(root.Get("water_sanitation.cooking_fuel"), CookingFuelChoices),
		Electricity:       nullDecoded(root.Get("water_sanitation.electricity_source"), ElectricityChoices),
		WasteDisposal:     nullDecoded(root.Get("water_sanitation.waste_disposal"), WasteDisposalChoices),
		IncomeSources:     nullDecodedMulti(root.Get("economics.income_sources"), IncomeSourceChoices),
		AnnualIncome:      nullFloat(root.Get("economics.annual_income")),
		AnnualExpense:     nullFloat(root.Get("economics.annual_expense")),
		HasLoan:           nullYesNo(root.Get("economics.has_loan")),
		LoanAmount:        nullFloat(root.Get("economics.loan_amount")),
		HasInsurance:      nullYesNo(root.Get("economics.has_insurance")),
		InAgriculture:     nullYesNo(root.Get("economics.in_agriculture")),
		FoodSufficiency:   nullDecoded(root.Get("economics.food_sufficiency"), FoodSufficiencyChoices),
		HouseholdPhoto:    nullString(root.Get("house.photo")),
		EnumerationNote:   nullString(root.Get("meta.note")),
		SurveyedIndoors:   nullYesNo(root.Get("meta.surveyed_indoors")),
		AbsentHouseholder: nullYesNo(root.Get("meta.absent_householder")),
	}

	rs := &RecordSet{
		Kind:      SurveyKindHousehold,
		Household: household,
	}

	parentID := core.SubmissionID
	for _, group := range cropGroups {
		rs.Crops = append(rs.Crops, parseCrops(root.Get(group.path), parentID, group.cropType, group.hasTrees)...)
	}
	rs.Animals = parseAnimals(root.Get("agriculture.animals"), parentID)
	rs.AnimalProducts = parseAnimalProducts(root.Get("agriculture.animal_products"), parentID)
	rs.Lands = parseLands(root.Get("agriculture.lands"), parentID)
	rs.Individuals = parseIndividuals(root.Get("individuals"), parentID)
	rs.Deaths = parseDeaths(root.Get("deaths"), parentID)

	attachHealthDetails(rs.Individuals, root.Get("health_details"), &joins)
	attachEducationDetails(rs.Individuals, root.Get("education_details"), &joins)
	attachOccupationDetails(rs.Individuals, root.Get("economy_details"), &joins)

	return rs, joins, nil
}

// parseSubmissionCore extracts the shared identity fields. The submission id
// and ward number are the only hard requirements of a submission.
func parseSubmissionCore(root gjson.Result, kind string) (SubmissionCore, error) {
	id := root.Get("_id")
	if !id.Exists() || id.String() == "" {
		return SubmissionCore{}, fmt.Errorf("submission missing required field _id")
	}

	ward := root.Get("id.ward_number")
	if !ward.Exists() || ward.String() == "" {
		return SubmissionCore{}, fmt.Errorf("submission %s: missing required field id.ward_number", id.String())
	}

	core := SubmissionCore{
		SubmissionID:  id.String(),
		SurveyKind:    kind,
		WardNumber:    int(ward.Int()),
		AreaCode:      nullString(root.Get("id.area_code")),
		EnumeratorID:  nullString(root.Get("id.enumerator_id")),
		BuildingToken: nullString(root.Get("id.building_token")),
		Geo:           ExtractGeo(root.Get("location")),
	}

	if end := root.Get("end"); end.Exists() {
		if t, err := time.Parse(time.RFC3339, end.String()); err == nil {
			core.SubmittedAt = null.TimeFrom(t)
		}
	}

	return core, nil
}

func parseCrops(arr gjson.Result, parentID, cropType string, hasTrees bool) []CropRecord {
	var crops []CropRecord
	arr.ForEach(func(_, item gjson.Result) bool {
		i := len(crops)
		crop := CropRecord{
			ChildID:    childID(item, parentID, cropType+"_crops", i),
			ParentID:   parentID,
			CropType:   cropType,
			Name:       DecodeSingle(item.Get("crop").String(), CropNameChoices),
			Area:       parseAreaField(item),
			Production: nullFloat(item.Get("production")),
			Sales:      nullFloat(item.Get("sales")),
			Revenue:    nullFloat(item.Get("revenue")),
			Remarks:    nullString(item.Get("remarks")),
		}
		if hasTrees {
			crop.TreeCount = nullInt(item.Get("tree_count"))
		}
		crops = append(crops, crop)
		return true
	})
	return crops
}

// parseAreaField converts a repeat-group row's land area to square meters.
// Rows that report no area component at all keep a null area; an explicit
// zero stays zero.
func parseAreaField(item gjson.Result) null.Float {
	if direct := item.Get("area_sq_meters"); direct.Exists() {
		return null.FloatFrom(direct.Float())
	}

	unit := item.Get("area_unit").String()
	a, b, c := item.Get("bigha"), item.Get("kattha"), item.Get("dhur")
	if unit == AreaUnitRopaniAanaPaisa {
		a, b, c = item.Get("ropani"), item.Get("aana"), item.Get("paisa")
	}
	if !a.Exists() && !b.Exists() && !c.Exists() {
		return null.Float{}
	}
	if unit == "" {
		unit = AreaUnitBighaKatthaDhur
	}
	return null.FloatFrom(AreaToSquareMeters(unit, a.Float(), b.Float(), c.Float()))
}

func parseAnimals(arr gjson.Result, parentID string) []AnimalRecord {
	var animals []AnimalRecord
	arr.ForEach(func(_, item gjson.Result) bool {
		animals = append(animals, AnimalRecord{
			ChildID:   childID(item, parentID, "animals", len(animals)),
			ParentID:  parentID,
			Name:      DecodeSingle(item.Get("animal").String(), AnimalNameChoices),
			Count:     nullInt(item.Get("count")),
			SoldCount: nullInt(item.Get("sold_count")),
			Revenue:   nullFloat(item.Get("revenue")),
		})
		return true
	})
	return animals
}

func parseAnimalProducts(arr gjson.Result, parentID string) []AnimalProductRecord {
	var products []AnimalProductRecord
	arr.ForEach(func(_, item gjson.Result) bool {
		products = append(products, AnimalProductRecord{
			ChildID:        childID(item, parentID, "animal_products", len(products)),
			ParentID:       parentID,
			Name:           DecodeSingle(item.Get("product").String(), AnimalProductChoices),
			Unit:           nullDecoded(item.Get("unit"), ProductUnitChoices),
			Production:     nullFloat(item.Get("production")),
			Sales:          nullFloat(item.Get("sales")),
			Revenue:        nullFloat(item.Get("revenue")),
			MonthsProduced: nullInt(item.Get("months_produced")),
		})
		return true
	})
	return products
}

func parseLands(arr gjson.Result, parentID string) []LandRecord {
	var lands []LandRecord
	arr.ForEach(func(_, item gjson.Result) bool {
		lands = append(lands, LandRecord{
			ChildID:     childID(item, parentID, "lands", len(lands)),
			ParentID:    parentID,
			WardNumber:  nullInt(item.Get("ward_number")),
			Area:        parseAreaField(item),
			Ownership:   nullDecoded(item.Get("ownership"), LandOwnershipChoices),
			IsIrrigated: nullYesNo(item.Get("is_irrigated")),
		})
		return true
	})
	return lands
}

func parseIndividuals(arr gjson.Result, parentID string) []IndividualRecord {
	var individuals []IndividualRecord
	arr.ForEach(func(_, item gjson.Result) bool {
		individuals = append(individuals, IndividualRecord{
			ChildID:        childID(item, parentID, "individuals", len(individuals)),
			ParentID:       parentID,
			Name:           item.Get("name").String(),
			Gender:         nullDecoded(item.Get("gender"), GenderChoices),
			Age:            nullInt(item.Get("age")),
			Relation:       nullDecoded(item.Get("relation"), RelationChoices),
			MotherTongue:   nullDecoded(item.Get("mother_tongue"), LanguageChoices),
			Citizenship:    nullDecoded(item.Get("citizenship"), CitizenshipChoices),
			AliveSons:      nullInt(item.Get("alive_sons")),
			AliveDaughters: nullInt(item.Get("alive_daughters")),
		})
		return true
	})
	return individuals
}

func parseDeaths(arr gjson.Result, parentID string) []DeathRecord {
	var deaths []DeathRecord
	arr.ForEach(func(_, item gjson.Result) bool {
		death := DeathRecord{
			ChildID:  childID(item, parentID, "deaths", len(deaths)),
			ParentID: parentID,
			Name:     item.Get("name").String(),
			Gender:   nullDecoded(item.Get("gender"), GenderChoices),
			Age:      nullInt(item.Get("age")),
			Cause:    nullDecoded(item.Get("cause"), DeathCauseChoices),
		}
		if death.Gender.Valid && death.Age.Valid {
			fertile := death.Gender.String == "Female" && death.Age.Int64 >= 15 && death.Age.Int64 <= 49
			death.FertileDeath = null.BoolFrom(fertile)
		}
		deaths = append(deaths, death)
		return true
	})
	return deaths
}

// matchIndividual finds the first individual with the given name and age.
// The source data has no stable key for these joins; when several members
// share a name and age the first one wins and the ambiguity is counted.
func matchIndividual(individuals []IndividualRecord, name string, age int64, joins *JoinStats) *IndividualRecord {
	var match *IndividualRecord
	matches := 0
	for i := range individuals {
		ind := &individuals[i]
		if ind.Name == name && ind.Age.Valid && ind.Age.Int64 == age {
			if match == nil {
				match = ind
			}
			matches++
		}
	}
	if matches > 1 {
		joins.Ambiguous++
	}
	if match == nil {
		joins.Unmatched++
	}
	return match
}

func attachHealthDetails(individuals []IndividualRecord, arr gjson.Result, joins *JoinStats) {
	arr.ForEach(func(_, item gjson.Result) bool {
		ind := matchIndividual(individuals, item.Get("name").String(), item.Get("age").Int(), joins)
		if ind == nil {
			return true
		}
		ind.HealthCondition = nullDecoded(item.Get("condition"), HealthConditionChoices)
		ind.HasChronicDisease = nullDecoded(item.Get("has_chronic_disease"), ChoiceTable{"yes": "Yes", "no": "No"})
		ind.ChronicDisease = nullDecoded(item.Get("chronic_disease"), ChronicDiseaseChoices)
		ind.DisabilityKind = nullDecoded(item.Get("disability"), DisabilityChoices)
		return true
	})
}

func attachEducationDetails(individuals []IndividualRecord, arr gjson.Result, joins *JoinStats) {
	arr.ForEach(func(_, item gjson.Result) bool {
		ind := matchIndividual(individuals, item.Get("name").String(), item.Get("age").Int(), joins)
		if ind == nil {
			return true
		}
		ind.LiteracyStatus = nullDecoded(item.Get("literacy"), LiteracyChoices)
		ind.SchoolingStatus = nullDecoded(item.Get("schooling"), SchoolingChoices)
		ind.EducationLevel = nullDecoded(item.Get("education_level"), EducationLevelChoices)
		return true
	})
}

func attachOccupationDetails(individuals []IndividualRecord, arr gjson.Result, joins *JoinStats) {
	arr.ForEach(func(_, item gjson.Result) bool {
		ind := matchIndividual(individuals, item.Get("name").String(), item.Get("age").Int(), joins)
		if ind == nil {
			return true
		}
		ind.Occupation = nullDecoded(item.Get("occupation"), OccupationChoices)
		ind.WorkMonths = nullInt(item.Get("work_months"))
		ind.SkillTraining = nullString(item.Get("skill_training"))
		return true
	})
}
