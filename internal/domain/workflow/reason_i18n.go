package workflow

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// BaseLocale is the canonical locale of reason messages
var BaseLocale = language.AmericanEnglish

var spanishMessages = map[ReasonCode]string{
	ReasonInsufficientPermissions: "No tienes permiso para realizar esta acción.",
	ReasonNotOwner:                "Solo puedes actuar sobre recursos que te pertenecen.",
	ReasonTerminalStatus:          "Esta solicitud está en un estado final y no se puede modificar.",
	ReasonInvalidTransition:       "Este cambio de estado no está permitido desde el estado actual.",
	ReasonAlreadyWithdrawn:        "Esta solicitud ya fue retirada.",
	ReasonInternshipDraft:         "Esta pasantía aún no está publicada.",
	ReasonInternshipClosed:        "Esta pasantía está cerrada.",
	ReasonDeadlineExpired:         "La fecha límite de postulación ha pasado.",
	ReasonMaxApplicantsReached:    "Se alcanzó el número máximo de candidatos aceptados.",
	ReasonKYCNotApproved:          "La empresa debe estar verificada antes de revisar solicitudes.",
	ReasonKYCPending:              "La verificación de la empresa sigue pendiente.",
	ReasonKYCRejected:             "La verificación de la empresa fue rechazada.",
	ReasonPolicyViolation:         "Esta acción está bloqueada por una política de la organización.",
	ReasonOutsideBusinessHours:    "Esta acción solo se permite entre las 06:00 y las 23:00.",
	ReasonCompanyHiringLimit:      "La empresa alcanzó su límite de contrataciones.",
	ReasonWeekendRestricted:       "No se pueden tomar decisiones de contratación los fines de semana.",
	ReasonTargetStatusRequired:    "Esta acción requiere un estado de destino.",
	ReasonUnknownIntent:           "La acción solicitada no es reconocida.",
	ReasonInvalidStatus:           "El estado de la solicitud no es reconocido.",
	ReasonUnknownError:            "Ocurrió un error inesperado.",
}

var supportedLocales = []language.Tag{BaseLocale, language.Spanish}

var localeMatcher = language.NewMatcher(supportedLocales)

func init() {
	for code, msg := range reasonMessages {
		message.SetString(BaseLocale, string(code), msg)
		message.SetString(language.English, string(code), msg)
	}
	for code, msg := range spanishMessages {
		message.SetString(language.Spanish, string(code), msg)
	}
}

// SupportedLocales returns the locales with a reason catalog
func SupportedLocales() []language.Tag {
	return append([]language.Tag(nil), supportedLocales...)
}

// MatchLocale picks the best supported locale for an Accept-Language header
func MatchLocale(acceptLanguage string) language.Tag {
	acceptLanguage = strings.TrimSpace(acceptLanguage)
	if acceptLanguage == "" {
		return BaseLocale
	}
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return BaseLocale
	}
	_, index, confidence := localeMatcher.Match(tags...)
	if confidence == language.No {
		return BaseLocale
	}
	return supportedLocales[index]
}

// Localize renders the message of code in the given locale, falling back
// to the canonical message
func Localize(code ReasonCode, tag language.Tag) string {
	if _, known := reasonMessages[code]; !known {
		code = ReasonUnknownError
	}
	_, index, _ := localeMatcher.Match(tag)
	return message.NewPrinter(supportedLocales[index]).Sprintf(string(code))
}
