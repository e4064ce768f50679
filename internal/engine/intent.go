package engine

import (
	"regexp"

	"github.com/nebulasur/ventia/internal/domain"
	"github.com/nebulasur/ventia/internal/kb"
)

// intentRule pairs a predicate with the intent it selects. Rules are
// evaluated in order and the first hit wins, so earlier rules encode
// higher priority: privacy and contact overrides must run before the
// generic buckets they would otherwise fall into.
type intentRule struct {
	intent domain.Intent
	match  func(tenant, msg string) bool
}

var intentRules = []intentRule{
	{domain.IntentPrivacy, func(_, msg string) bool { return isPrivacyRequest(msg) }},
	{domain.IntentContactInfo, func(_, msg string) bool { return asksContactInfo(msg) }},
	{domain.IntentPersonal, func(_, msg string) bool { return isPersonalRequest(msg) }},
	{domain.IntentSmalltalk, func(_, msg string) bool { return isSmallTalk(msg) }},
	{domain.IntentGreeting, func(_, msg string) bool { return isGreeting(msg) }},
	{domain.IntentDirections, func(_, msg string) bool { return asksDirections(msg) }},
	{domain.IntentLocation, func(_, msg string) bool { return asksOfficeLocation(msg) }},
	{domain.IntentAppointment, func(_, msg string) bool { return asksAppointment(msg) }},
	{domain.IntentIdentity, func(_, msg string) bool { return asksCompanyOverview(msg) }},
	{domain.IntentPropertySearch, isPropertySearchIntent},
	{domain.IntentCatalog, func(_, msg string) bool { return asksServiceList(msg) }},
}

// Classify assigns exactly one intent to a normalized message. Blank
// messages and messages matching no rule yield the default intent.
func Classify(tenant, normalizedMessage string) domain.Intent {
	if normalizedMessage == "" {
		return domain.IntentDefault
	}
	for _, rule := range intentRules {
		if rule.match(tenant, normalizedMessage) {
			return rule.intent
		}
	}
	return domain.IntentDefault
}

func isPrivacyRequest(msg string) bool {
	if containsAny(msg,
		"privacidad", "conversacion privada", "es privada", "rgpd", "gdpr",
		"datos personales", "guardais mis datos", "guardar mis datos", "compartis mis datos",
		"borrar mis datos", "que datos teneis", "se guarda lo que escribo",
		"me esta leyendo una persona", "eres una ia", "eres ia", "ia o humano", "ia o un humano",
		"ai or human", "human or ai", "are you ai", "are you human",
		"privacy", "personal data", "store my data", "share my data", "delete my data") {
		return true
	}
	// Asking about someone else's order is a privacy matter too.
	return containsAny(msg, "pedido", "pedidos", "order", "orders") &&
		containsAny(msg, "juan", "perez", "otra persona", "tercero", "another person", "third party")
}

func asksContactInfo(msg string) bool {
	if containsAny(msg, "mi telefono", "my phone", "mi email", "my email") {
		return false
	}
	return asksOfficeLocation(msg) ||
		asksDirections(msg) ||
		containsAny(msg,
			"whatsapp", "wsp", "wasap", "contacto", "atencion al cliente",
			"persona real", "humano", "humana", "hablar con", "ventas", "soporte", "supervisor", "responsable",
			"horario", "a que hora", "abris", "abrir", "cerrar", "cerrais", "cerras",
			"fin de semana", "fines de semana", "sabado", "domingo", "atendeis", "abierto", "cerrado",
			"sin cita", "cita previa", "puedo pasar ahora", "pasar ahora", "atenderme hoy",
			"contact", "customer service", "human", "real person", "talk to", "sales", "support", "manager",
			"opening hours", "open", "close", "weekend", "available today")
}

func isPersonalRequest(msg string) bool {
	return containsAny(msg,
		"que llevas puesto", "tu edad", "cuantos anos", "donde vives", "eres real",
		"what are you wearing", "your age")
}

func isSmallTalk(msg string) bool {
	return containsAny(msg, "chiste", "joke", "cuentame algo")
}

func isGreeting(msg string) bool {
	return len(msg) <= 20 &&
		containsAny(msg, "hola", "buenas", "hello", "hi", "hey", "buenos dias", "buenas tardes")
}

func asksDirections(msg string) bool {
	return containsAny(msg,
		"como llego", "como llegar", "parking", "aparcamiento", "transporte", "metro", "bus",
		"google maps", "indicaciones",
		"how to get", "directions", "public transport", "maps")
}

func asksOfficeLocation(msg string) bool {
	if containsAny(msg, "mi telefono", "my phone", "mi email", "my email") {
		return false
	}
	return containsAny(msg,
		"donde estais", "donde estan", "ubicacion", "direccion", "oficina", "horario",
		"telefono", "mapa", "email", "correo",
		"where are you", "location", "address", "office", "phone", "schedule", "maps")
}

func asksAppointment(msg string) bool {
	return containsAny(msg,
		"cita", "concertar", "agendar", "reunion", "appointment", "book", "meeting", "schedule")
}

func asksCompanyOverview(msg string) bool {
	return containsAny(msg,
		"de que va", "a que se dedica", "quienes sois", "quienes son", "informacion de la empresa",
		"quien eres", "who are you", "about the company", "company info", "what do you do")
}

// isPropertySearchIntent only fires for the real-estate tenant; other
// tenants get redirected by the responder instead.
func isPropertySearchIntent(tenant, msg string) bool {
	if kb.NormalizeTenant(tenant) != kb.TenantA {
		return false
	}
	return containsAny(msg,
		"viviendas", "vivienda", "pisos", "casas", "chalet", "obra nueva", "locales",
		"en venta", "comprar vivienda",
		"properties", "apartments", "homes", "for sale")
}

func asksServiceList(msg string) bool {
	return containsAny(msg,
		"servicios", "productos", "articulos", "que teneis", "que ofreces", "que ofreceis",
		"catalogo", "lista",
		"services", "products", "catalog", "list")
}

func asksInventory(msg string) bool {
	return containsAny(msg,
		"pisos", "locales", "disponibles", "stock", "inventario", "referencia",
		"availability", "inventory", "units")
}

func isRecommendationRequest(message string) bool {
	return containsAny(Normalize(message),
		"propon", "recomienda", "que me recomiendas", "que me propones", "que opcion",
		"suggest", "recommend", "proposal", "best option", "start with")
}

func wantsToCancelFlow(msg string) bool {
	return containsAny(msg, "cancelar", "cancel", "detener", "stop", "salir", "exit")
}

func isLocationOnlyRequest(msg string) bool {
	return containsAny(msg, "solo ubicacion", "solo la ubicacion", "solo direccion", "solamente la ubicacion")
}

func showsFrustration(msg string) bool {
	return containsAny(msg, "no quiero", "te he dicho", "solamente", "solo eso")
}

var (
	dateDigitsRe = regexp.MustCompile(`\b\d{1,2}[/-]\d{1,2}([/-]\d{2,4})?\b`)
	timeClockRe  = regexp.MustCompile(`\b([01]?\d|2[0-3])[:h.]?[0-5]?\d\b`)
	timeMeridiem = regexp.MustCompile(`\b\d{1,2}\s*(am|pm)\b`)
	yearRe       = regexp.MustCompile(`\b(19\d{2}|20\d{2})\b`)
	vinRe        = regexp.MustCompile(`\b[a-hj-npr-z0-9]{17}\b`)
	budgetRe     = regexp.MustCompile(`\b\d{4,}\b`)
	anyNumberRe  = regexp.MustCompile(`\b\d+\b`)
	longWordRe   = regexp.MustCompile(`[a-z]{4,}`)
	emailRe      = regexp.MustCompile(`[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`)
	digitRe      = regexp.MustCompile(`[0-9]`)
)

func looksLikeDate(msg string) bool {
	return containsAny(msg,
		"hoy", "manana", "pasado manana", "lunes", "martes", "miercoles", "jueves", "viernes",
		"sabado", "domingo",
		"today", "tomorrow", "monday", "tuesday", "wednesday", "thursday", "friday") ||
		dateDigitsRe.MatchString(msg)
}

func looksLikeTime(msg string) bool {
	return containsAny(msg, "manana", "tarde", "noche", "morning", "afternoon", "evening") ||
		timeClockRe.MatchString(msg) ||
		timeMeridiem.MatchString(msg)
}

func looksLikeMode(msg string) bool {
	return containsAny(msg, "presencial", "online", "virtual", "remoto", "in person")
}

func normalizeMode(msg, lang string) string {
	if containsAny(msg, "presencial", "in person") {
		if lang == "en" {
			return "in-person"
		}
		return "presencial"
	}
	return "online"
}

// looksLikeContact checks the raw message: an email address or at
// least nine digits anywhere in the text.
func looksLikeContact(raw string) bool {
	if raw == "" {
		return false
	}
	if emailRe.MatchString(raw) {
		return true
	}
	return len(digitRe.FindAllString(raw, -1)) >= 9
}

func isValidReason(raw string) bool {
	normalized := Normalize(raw)
	return len(normalized) >= 3 &&
		!looksLikeDate(normalized) &&
		!looksLikeTime(normalized) &&
		!looksLikeContact(raw)
}

func looksLikeZone(msg string) bool {
	return containsAny(msg,
		"madrid", "barcelona", "valencia", "sevilla", "malaga", "zaragoza",
		"centro", "norte", "sur", "zona") ||
		longWordRe.MatchString(msg)
}

func looksLikeBudget(msg string) bool {
	return budgetRe.MatchString(msg) || containsAny(msg, "eur", "euro", "mil", "k")
}

func looksLikeRooms(msg string) bool {
	return anyNumberRe.MatchString(msg) ||
		containsAny(msg, "habitacion", "habitaciones", "dormitorio", "bedroom")
}

func looksLikePropertyType(msg string) bool {
	return containsAny(msg,
		"piso", "chalet", "casa", "obra nueva", "inversion", "local", "apartment", "house")
}

func looksLikeGoal(msg string) bool {
	return containsAny(msg, "vivir", "alquilar", "inversion", "invertir", "living", "rent", "investment")
}

func looksLikeVehicleData(msg string) bool {
	if vinRe.MatchString(msg) {
		return true
	}
	return yearRe.MatchString(msg) &&
		containsAny(msg, "motor", "diesel", "gasolina", "hdi", "tdi", "tsi", "dci", "cv")
}
