package course

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/coursehub/core"
)

var (
	courseStatusTag  = "coursestatus"
	courseStatusText = "must be one of draft, published or archived"

	materialTypeTag  = "materialtype"
	materialTypeText = "must be one of video, document, link or text"
)

// InitValidators registers the course validators & their translations.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	core.RegisterOneOfValidation(validate, translator, courseStatusTag, courseStatusText,
		string(StatusDraft), string(StatusPublished), string(StatusArchived))
	core.RegisterOneOfValidation(validate, translator, materialTypeTag, materialTypeText,
		string(MaterialVideo), string(MaterialDocument), string(MaterialLink), string(MaterialText))
}
