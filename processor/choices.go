package processor

import "strings"

// ChoiceTable maps a survey instrument's coded answer values to display
// labels.
type ChoiceTable map[string]string

// DecodeSingle returns the label for code in table. Codes the table does not
// know are returned unchanged so unexpected answers stay visible downstream
// instead of being dropped.
func DecodeSingle(code string, table ChoiceTable) string {
	if label, ok := table[code]; ok {
		return label
	}
	return code
}

// DecodeMultiple decodes a space-separated multi-select raw value
// element-wise, skipping empty entries.
func DecodeMultiple(raw string, table ChoiceTable) []string {
	var labels []string
	for _, code := range strings.Fields(raw) {
		labels = append(labels, DecodeSingle(code, table))
	}
	return labels
}

// DecodeMultipleJoined decodes a multi-select raw value and joins the labels
// with ", " for single-column storage.
func DecodeMultipleJoined(raw string, table ChoiceTable) string {
	return strings.Join(DecodeMultiple(raw, table), ", ")
}

// Choice tables for the coded fields the parsers read. Codes follow the
// collection instrument's value sheet.
var (
	GenderChoices = ChoiceTable{
		"male":   "Male",
		"female": "Female",
		"other":  "Other",
	}

	ReligionChoices = ChoiceTable{
		"hindu":     "Hindu",
		"buddhist":  "Buddhist",
		"muslim":    "Muslim",
		"christian": "Christian",
		"kirat":     "Kirat",
		"other":     "Other",
	}

	LanguageChoices = ChoiceTable{
		"nepali":   "Nepali",
		"maithili": "Maithili",
		"bhojpuri": "Bhojpuri",
		"tharu":    "Tharu",
		"tamang":   "Tamang",
		"newari":   "Newari",
		"magar":    "Magar",
		"other":    "Other",
	}

	EthnicityChoices = ChoiceTable{
		"brahmin":  "Brahmin",
		"chhetri":  "Chhetri",
		"janajati": "Janajati",
		"dalit":    "Dalit",
		"madhesi":  "Madhesi",
		"muslim":   "Muslim",
		"other":    "Other",
	}

	RelationChoices = ChoiceTable{
		"self":            "Head",
		"husband":         "Husband",
		"wife":            "Wife",
		"son":             "Son",
		"daughter":        "Daughter",
		"father":          "Father",
		"mother":          "Mother",
		"brother":         "Brother",
		"sister":          "Sister",
		"daughter_in_law": "Daughter-in-law",
		"grandson":        "Grandson",
		"granddaughter":   "Granddaughter",
		"other":           "Other",
	}

	HouseOwnershipChoices = ChoiceTable{
		"private":       "Private",
		"rented":        "Rented",
		"institutional": "Institutional",
		"public_land":   "On public land",
	}

	LandOwnershipChoices = ChoiceTable{
		"private":  "Private",
		"guthi":    "Guthi",
		"public":   "Public/Ailani",
		"rented":   "Rented",
		"squatter": "Squatter",
	}

	FoundationChoices = ChoiceTable{
		"mud_bonded":       "Mud-bonded brick/stone",
		"cement_bonded":    "Cement-bonded brick/stone",
		"rcc_pillar":       "RCC with pillar",
		"wooden_pillar":    "Wooden pillar",
		"other_foundation": "Other",
	}

	RoofTypeChoices = ChoiceTable{
		"thatch":     "Thatch/Straw",
		"galvanized": "Galvanized sheet",
		"tile":       "Tile/Khapada",
		"rcc":        "RCC",
		"wood_plank": "Wood/Plank",
		"mud":        "Mud",
		"other_roof": "Other",
	}

	ToiletTypeChoices = ChoiceTable{
		"flush_sewer":  "Flush (sewer connected)",
		"flush_septic": "Flush (septic tank)",
		"ordinary":     "Ordinary",
		"public":       "Public toilet",
		"none":         "No toilet",
	}

	WaterSourceChoices = ChoiceTable{
		"tap_home":     "Piped (own tap)",
		"tap_public":   "Piped (public tap)",
		"tubewell":     "Tubewell/Handpump",
		"covered_well": "Covered well",
		"open_well":    "Open well",
		"spring":       "Spring",
		"river":        "River/Stream",
		"jar":          "Jar/Bottle",
	}

	CookingFuelChoices = ChoiceTable{
		"firewood": "Firewood",
		"lpg":      "LP Gas",
		"biogas":   "Biogas",
		"kerosene": "Kerosene",
		"electric": "Electricity",
		"guitha":   "Dung cake",
	}

	ElectricityChoices = ChoiceTable{
		"grid":     "National grid",
		"solar":    "Solar",
		"kerosene": "Kerosene lamp",
		"biogas":   "Biogas",
		"none":     "None",
	}

	WasteDisposalChoices = ChoiceTable{
		"collection": "Municipal collection",
		"burn":       "Burnt",
		"bury":       "Buried",
		"compost":    "Composted",
		"open_dump":  "Dumped in open",
		"river_dump": "Dumped in river",
	}

	IncomeSourceChoices = ChoiceTable{
		"agriculture":  "Agriculture",
		"business":     "Business",
		"job":          "Salaried job",
		"wage":         "Daily wage",
		"remittance":   "Foreign remittance",
		"pension":      "Pension",
		"rent":         "House/Land rent",
		"other_income": "Other",
	}

	FoodSufficiencyChoices = ChoiceTable{
		"3_months":  "Up to 3 months",
		"6_months":  "Up to 6 months",
		"9_months":  "Up to 9 months",
		"12_months": "Whole year",
		"surplus":   "Surplus",
	}

	HealthConditionChoices = ChoiceTable{
		"healthy":         "Healthy",
		"chronic_disease": "Chronic disease",
		"disabled":        "Disability",
	}

	ChronicDiseaseChoices = ChoiceTable{
		"heart":          "Heart disease",
		"diabetes":       "Diabetes",
		"blood_pressure": "High blood pressure",
		"asthma":         "Asthma/Respiratory",
		"kidney":         "Kidney disease",
		"epilepsy":       "Epilepsy",
		"cancer":         "Cancer",
		"hiv":            "HIV/AIDS",
		"other_disease":  "Other",
	}

	DisabilityChoices = ChoiceTable{
		"physical":     "Physical",
		"blind":        "Blind/Low vision",
		"deaf":         "Deaf/Hard of hearing",
		"speech":       "Speech impairment",
		"mental":       "Mental/Psychosocial",
		"intellectual": "Intellectual",
		"multiple":     "Multiple disabilities",
	}

	LiteracyChoices = ChoiceTable{
		"both":       "Can read and write",
		"read_only":  "Can read only",
		"illiterate": "Illiterate",
	}

	EducationLevelChoices = ChoiceTable{
		"pre_primary": "Pre-primary",
		"basic":       "Basic (1-8)",
		"secondary":   "Secondary (9-12)",
		"bachelor":    "Bachelor",
		"master":      "Master or above",
		"technical":   "Technical/Vocational",
		"informal":    "Informal education",
	}

	SchoolingChoices = ChoiceTable{
		"going":     "Currently enrolled",
		"dropped":   "Dropped out",
		"never":     "Never enrolled",
		"completed": "Completed",
	}

	OccupationChoices = ChoiceTable{
		"agriculture":        "Agriculture",
		"business":           "Business",
		"govt_job":           "Government job",
		"private_job":        "Private job",
		"foreign_employment": "Foreign employment",
		"wage_labor":         "Wage labor",
		"student":            "Student",
		"household_work":     "Household work",
		"unemployed":         "Unemployed",
	}

	CitizenshipChoices = ChoiceTable{
		"citizenship": "Has citizenship certificate",
		"minor":       "Minor (not eligible)",
		"none":        "No certificate",
	}

	CropNameChoices = ChoiceTable{
		"paddy":       "Paddy",
		"maize":       "Maize",
		"wheat":       "Wheat",
		"millet":      "Millet",
		"barley":      "Barley",
		"lentil":      "Lentil",
		"chickpea":    "Chickpea",
		"blackgram":   "Black gram",
		"soybean":     "Soybean",
		"mustard":     "Mustard",
		"sunflower":   "Sunflower",
		"sesame":      "Sesame",
		"potato":      "Potato",
		"cauliflower": "Cauliflower",
		"cabbage":     "Cabbage",
		"tomato":      "Tomato",
		"onion":       "Onion",
		"mango":       "Mango",
		"banana":      "Banana",
		"litchi":      "Litchi",
		"guava":       "Guava",
		"ginger":      "Ginger",
		"garlic":      "Garlic",
		"turmeric":    "Turmeric",
		"chilli":      "Chilli",
		"sugarcane":   "Sugarcane",
		"jute":        "Jute",
		"tobacco":     "Tobacco",
		"tea":         "Tea",
	}

	AnimalNameChoices = ChoiceTable{
		"cow":     "Cow",
		"buffalo": "Buffalo",
		"ox":      "Ox",
		"goat":    "Goat/Sheep",
		"pig":     "Pig/Boar",
		"chicken": "Chicken",
		"duck":    "Duck",
		"fish":    "Fish",
		"bee":     "Bee colony",
	}

	AnimalProductChoices = ChoiceTable{
		"milk":  "Milk",
		"ghee":  "Ghee",
		"egg":   "Egg",
		"meat":  "Meat",
		"wool":  "Wool",
		"honey": "Honey",
		"silk":  "Silk cocoon",
	}

	BusinessNatureChoices = ChoiceTable{
		"retail":         "Retail shop",
		"wholesale":      "Wholesale",
		"hotel":          "Hotel/Lodge",
		"restaurant":     "Restaurant/Tea shop",
		"service":        "Service industry",
		"manufacturing":  "Manufacturing",
		"finance":        "Finance/Cooperative",
		"other_business": "Other",
	}

	AccommodationChoices = ChoiceTable{
		"hotel":       "Hotel",
		"lodge":       "Lodge",
		"homestay":    "Homestay",
		"guest_house": "Guest house",
	}

	NaturalDisasterChoices = ChoiceTable{
		"flood":      "Flood",
		"landslide":  "Landslide",
		"fire":       "Fire",
		"earthquake": "Earthquake",
		"storm":      "Windstorm",
		"lightning":  "Lightning",
		"none":       "None",
	}

	DeathCauseChoices = ChoiceTable{
		"chronic_disease": "Chronic disease",
		"infectious":      "Infectious disease",
		"accident":        "Accident",
		"suicide":         "Suicide",
		"maternal":        "Maternity related",
		"aging":           "Old age",
		"other_cause":     "Other",
	}

	ProductUnitChoices = ChoiceTable{
		"kg":    "Kilogram",
		"liter": "Liter",
		"count": "Count",
		"muri":  "Muri",
	}
)
