package parts

import (
	"net/http"

	"github.com/meridian-erp/meridian/internal/form"
)

// PartForm is the validated shape of a submitted part.
type PartForm struct {
	Code          string  `validate:"required,max=32"`
	Name          string  `validate:"required,max=255"`
	Description   string  `validate:"max=500"`
	PartType      string  `validate:"required,oneof=Inventory Non-Inventory Service"`
	Replenishment string  `validate:"required,oneof=Buy Make 'Buy and Make'"`
	UnitOfMeasure string  `validate:"required,max=10"`
	UnitCost      float64 `validate:"gte=0"`
	LeadTimeDays  int     `validate:"gte=0"`
}

var partSchema = form.NewSchema(map[string]form.Field{
	"Code":          {Name: "code", Label: "Part number"},
	"Name":          {Name: "name", Label: "Name"},
	"Description":   {Name: "description", Label: "Description"},
	"PartType":      {Name: "part_type", Label: "Part type"},
	"Replenishment": {Name: "replenishment", Label: "Replenishment system"},
	"UnitOfMeasure": {Name: "unit_of_measure", Label: "Unit of measure"},
	"UnitCost":      {Name: "unit_cost", Label: "Unit cost"},
	"LeadTimeDays":  {Name: "lead_time", Label: "Lead time"},
})

// PartInput carries a parsed part submission through the action pipeline.
type PartInput struct {
	ID      int64
	Part    Part
	Filters string
}

func parsePartForm(r *http.Request) (PartInput, map[string]string) {
	errs := make(map[string]string)
	f := PartForm{
		Code:          r.PostFormValue("code"),
		Name:          r.PostFormValue("name"),
		Description:   r.PostFormValue("description"),
		PartType:      r.PostFormValue("part_type"),
		Replenishment: r.PostFormValue("replenishment"),
		UnitOfMeasure: r.PostFormValue("unit_of_measure"),
		UnitCost:      form.Float(r.PostForm, "unit_cost", "Unit cost", errs),
		LeadTimeDays:  form.Int(r.PostForm, "lead_time", "Lead time", errs),
	}
	mergeErrors(errs, partSchema.Validate(f))

	return PartInput{
		Part: Part{
			Code:          f.Code,
			Name:          f.Name,
			Description:   f.Description,
			PartType:      f.PartType,
			Replenishment: f.Replenishment,
			UnitOfMeasure: f.UnitOfMeasure,
			GroupID:       form.ID(r.PostForm, "group_id"),
			UnitCost:      f.UnitCost,
			LeadTimeDays:  f.LeadTimeDays,
			Active:        form.Bool(r.PostForm, "active"),
			Blocked:       form.Bool(r.PostForm, "blocked"),
		},
	}, errs
}

// GroupForm is the validated shape of a submitted part group. Description is
// deliberately optional and may be blank.
type GroupForm struct {
	Name        string `validate:"required,max=255"`
	Description string `validate:"max=500"`
}

var groupSchema = form.NewSchema(map[string]form.Field{
	"Name":        {Name: "name", Label: "Part group name"},
	"Description": {Name: "description", Label: "Description"},
})

// GroupInput carries a parsed part group submission.
type GroupInput struct {
	ID    int64
	Group PartGroup
}

func parseGroupForm(r *http.Request) (GroupInput, map[string]string) {
	f := GroupForm{
		Name:        r.PostFormValue("name"),
		Description: r.PostFormValue("description"),
	}
	return GroupInput{
		Group: PartGroup{Name: f.Name, Description: f.Description},
	}, groupSchema.Validate(f)
}

// UnitForm is the validated shape of a submitted unit of measure.
type UnitForm struct {
	Code string `validate:"required,max=10"`
	Name string `validate:"required,max=255"`
}

var unitSchema = form.NewSchema(map[string]form.Field{
	"Code": {Name: "code", Label: "Unit of measure code"},
	"Name": {Name: "name", Label: "Name"},
})

// UnitInput carries a parsed unit of measure submission.
type UnitInput struct {
	ID   int64
	Unit UnitOfMeasure
}

func parseUnitForm(r *http.Request) (UnitInput, map[string]string) {
	f := UnitForm{
		Code: r.PostFormValue("code"),
		Name: r.PostFormValue("name"),
	}
	return UnitInput{
		Unit: UnitOfMeasure{Code: f.Code, Name: f.Name},
	}, unitSchema.Validate(f)
}

func mergeErrors(dst, src map[string]string) {
	for k, v := range src {
		if _, ok := dst[k]; !ok {
			dst[k] = v
		}
	}
}
