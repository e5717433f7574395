package processor

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/tidwall/gjson"
)

// ParseBuilding flattens raw building submissions into a BuildingRecord plus
// the family and business rows associated with the structure.
type ParseBuilding struct {
	processors []Processor
	mu         sync.Mutex
	stats      struct {
		ProcessedSubmissions uint64
		FailedSubmissions    uint64
		LastSubmissionTime   time.Time
	}
}

func NewParseBuilding(config map[string]interface{}) (*ParseBuilding, error) {
	return &ParseBuilding{}, nil
}

func (p *ParseBuilding) Subscribe(processor Processor) {
	p.processors = append(p.processors, processor)
}

func (p *ParseBuilding) Process(ctx context.Context, msg Message) error {
	raw, err := ExtractRawSubmission(msg)
	if err != nil {
		return err
	}

	rs, err := ParseBuildingSubmission(raw)
	if err != nil {
		p.mu.Lock()
		p.stats.FailedSubmissions++
		p.mu.Unlock()
		return fmt.Errorf("error parsing building submission: %w", err)
	}

	p.mu.Lock()
	p.stats.ProcessedSubmissions++
	p.stats.LastSubmissionTime = time.Now()
	p.mu.Unlock()

	return ForwardToProcessors(ctx, rs, p.processors)
}

// ParseBuildingSubmission parses one raw building payload.
func ParseBuildingSubmission(raw []byte) (*RecordSet, error) {
	root := gjson.ParseBytes(raw)

	core, err := parseSubmissionCore(root, SurveyKindBuilding)
	if err != nil {
		return nil, err
	}

	owner := root.Get("building.owner_name").String()
	if owner == "" {
		return nil, fmt.Errorf("submission %s: missing required field building.owner_name", core.SubmissionID)
	}

	building := &BuildingRecord{
		SubmissionCore:   core,
		OwnerName:        owner,
		OwnerPhone:       nullString(root.Get("building.owner_phone")),
		IsSquatter:       nullYesNo(root.Get("building.is_squatter")),
		LandOwnership:    nullDecoded(root.Get("building.land_ownership"), LandOwnershipChoices),
		BuildingBase:     nullDecoded(root.Get("building.base"), FoundationChoices),
		RoofType:         nullDecoded(root.Get("building.roof_type"), RoofTypeChoices),
		FloorCount:       nullInt(root.Get("building.floor_count")),
		NaturalDisasters: nullDecodedMulti(root.Get("building.natural_disasters"), NaturalDisasterChoices),
		FamilyCount:      nullInt(root.Get("building.family_count")),
		BusinessCount:    nullInt(root.Get("building.business_count")),
		BuildingPhoto:    nullString(root.Get("building.photo")),
	}

	rs := &RecordSet{
		Kind:     SurveyKindBuilding,
		Building: building,
	}

	parentID := core.SubmissionID
	root.Get("families").ForEach(func(_, item gjson.Result) bool {
		rs.BuildingFamilies = append(rs.BuildingFamilies, BuildingFamilyRecord{
			ChildID:  childID(item, parentID, "families", len(rs.BuildingFamilies)),
			ParentID: parentID,
			HeadName: item.Get("head_name").String(),
			Phone:    nullString(item.Get("phone")),
		})
		return true
	})
	root.Get("businesses").ForEach(func(_, item gjson.Result) bool {
		rs.BuildingBusinesses = append(rs.BuildingBusinesses, BuildingBusinessRecord{
			ChildID:      childID(item, parentID, "businesses", len(rs.BuildingBusinesses)),
			ParentID:     parentID,
			BusinessName: item.Get("name").String(),
			OperatorName: nullString(item.Get("operator_name")),
		})
		return true
	})

	return rs, nil
}
