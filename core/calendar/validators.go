package calendar

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/coursehub/core"
)

var (
	eventTypeTag  = "eventtype"
	eventTypeText = "must be one of lecture, assignment, exam, meeting or other"

	endsAfterStartTag  = "endsafterstart"
	endsAfterStartText = "the event cannot end before it starts"
)

// InitValidators registers the calendar validators & their translations.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	types := make([]string, 0, len(AllEventTypes))
	for _, t := range AllEventTypes {
		types = append(types, string(t))
	}
	core.RegisterOneOfValidation(validate, translator, eventTypeTag, eventTypeText, types...)

	validate.RegisterStructValidation(eventStructValidation, NewEvent{}, UpdateEvent{})
	core.RegisterCustomTranslation(validate, translator, endsAfterStartTag, endsAfterStartText)
}

func eventStructValidation(sl validator.StructLevel) {
	switch evt := sl.Current().Interface().(type) {
	case NewEvent:
		if evt.EndsAt.Before(evt.StartsAt) {
			sl.ReportError(evt.EndsAt, "ends_at", "EndsAt", endsAfterStartTag, "")
		}
	case UpdateEvent:
		if evt.ends.Before(evt.starts) {
			sl.ReportError(evt.EndsAt, "ends_at", "EndsAt", endsAfterStartTag, "")
		}
	}
}
