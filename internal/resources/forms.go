package resources

import (
	"net/http"

	"github.com/meridian-erp/meridian/internal/form"
)

// EquipmentTypeForm is the validated shape of a submitted equipment type.
type EquipmentTypeForm struct {
	Name        string `validate:"required,max=100"`
	Description string `validate:"max=500"`
}

var equipmentTypeSchema = form.NewSchema(map[string]form.Field{
	"Name":        {Name: "name", Label: "Equipment type name"},
	"Description": {Name: "description", Label: "Description"},
})

// EquipmentTypeInput carries a parsed equipment type submission.
type EquipmentTypeInput struct {
	ID   int64
	Type EquipmentType
}

func parseEquipmentTypeForm(r *http.Request) (EquipmentTypeInput, map[string]string) {
	f := EquipmentTypeForm{
		Name:        r.PostFormValue("name"),
		Description: r.PostFormValue("description"),
	}
	return EquipmentTypeInput{
		Type: EquipmentType{
			Name:        f.Name,
			Description: f.Description,
			Active:      true,
		},
	}, equipmentTypeSchema.Validate(f)
}

// LocationForm is the validated shape of a submitted location.
type LocationForm struct {
	Code        string `validate:"required,min=2,max=20"`
	Name        string `validate:"required,max=100"`
	Description string `validate:"max=500"`
}

var locationSchema = form.NewSchema(map[string]form.Field{
	"Code":        {Name: "code", Label: "Location code"},
	"Name":        {Name: "name", Label: "Location name"},
	"Description": {Name: "description", Label: "Description"},
})

// LocationInput carries a parsed location submission.
type LocationInput struct {
	ID       int64
	Location Location
}

func parseLocationForm(r *http.Request) (LocationInput, map[string]string) {
	f := LocationForm{
		Code:        r.PostFormValue("code"),
		Name:        r.PostFormValue("name"),
		Description: r.PostFormValue("description"),
	}
	return LocationInput{
		Location: Location{
			Code:        f.Code,
			Name:        f.Name,
			Description: f.Description,
		},
	}, locationSchema.Validate(f)
}
