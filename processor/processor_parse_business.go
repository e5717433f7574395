package processor

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/tidwall/gjson"
)

// ParseBusiness flattens raw business submissions into a BusinessRecord.
type ParseBusiness struct {
	processors []Processor
	mu         sync.Mutex
	stats      struct {
		ProcessedSubmissions uint64
		FailedSubmissions    uint64
		LastSubmissionTime   time.Time
	}
}

func NewParseBusiness(config map[string]interface{}) (*ParseBusiness, error) {
	return &ParseBusiness{}, nil
}

func (p *ParseBusiness) Subscribe(processor Processor) {
	p.processors = append(p.processors, processor)
}

func (p *ParseBusiness) Process(ctx context.Context, msg Message) error {
	raw, err := ExtractRawSubmission(msg)
	if err != nil {
		return err
	}

	rs, err := ParseBusinessSubmission(raw)
	if err != nil {
		p.mu.Lock()
		p.stats.FailedSubmissions++
		p.mu.Unlock()
		return fmt.Errorf("error parsing business submission: %w", err)
	}

	p.mu.Lock()
	p.stats.ProcessedSubmissions++
	p.stats.LastSubmissionTime = time.Now()
	p.mu.Unlock()

	return ForwardToProcessors(ctx, rs, p.processors)
}

// ParseBusinessSubmission parses one raw business payload.
func ParseBusinessSubmission(raw []byte) (*RecordSet, error) {
	root := gjson.ParseBytes(raw)

	core, err := parseSubmissionCore(root, SurveyKindBusiness)
	if err != nil {
		return nil, err
	}

	name := root.Get("business.name").String()
	if name == "" {
		return nil, fmt.Errorf("submission %s: missing required field business.name", core.SubmissionID)
	}

	business := &BusinessRecord{
		SubmissionCore:   core,
		BusinessName:     name,
		BusinessNature:   nullDecoded(root.Get("business.nature"), BusinessNatureChoices),
		BusinessType:     nullString(root.Get("business.type")),
		OperatorName:     nullString(root.Get("business.operator_name")),
		OperatorPhone:    nullString(root.Get("business.operator_phone")),
		OperatorGender:   nullDecoded(root.Get("business.operator_gender"), GenderChoices),
		Registered:       nullYesNo(root.Get("registration.registered")),
		RegisteredBodies: nullString(root.Get("registration.bodies")),
		PANNumber:        nullString(root.Get("registration.pan_number")),
		Investment:       nullFloat(root.Get("economics.investment")),
		AnnualProfit:     nullFloat(root.Get("economics.annual_profit")),
		PartnerCount:     nullInt(root.Get("economics.partner_count")),
		MaleEmployees:    nullInt(root.Get("employees.male")),
		FemaleEmployees:  nullInt(root.Get("employees.female")),
		HotelAccomType:   nullDecoded(root.Get("hotel.accommodation_type"), AccommodationChoices),
		HotelRoomCount:   nullInt(root.Get("hotel.room_count")),
		HotelBedCount:    nullInt(root.Get("hotel.bed_count")),
	}

	return &RecordSet{
		Kind:     SurveyKindBusiness,
		Business: business,
	}, nil
}
