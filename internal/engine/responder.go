package engine

import (
	"strings"

	"github.com/nebulasur/ventia/internal/domain"
	"github.com/nebulasur/ventia/internal/kb"
)

// Canned replies and the deterministic fallback. Every string here is
// bilingual es/en; copy lives next to its selector so the two language
// variants cannot drift apart.

func (e *Engine) greetingResponse(tenant, lang string) *domain.ChatResponse {
	if lang == "en" {
		return domain.SimpleResponse("Hi, I am the commercial assistant of " + kb.DisplayName(tenant) +
			". I can help with services, products, appointments and support.")
	}
	return domain.SimpleResponse("Hola, soy la asistente comercial de " + kb.DisplayName(tenant) +
		". Puedo ayudarte con servicios, productos, citas y soporte.")
}

func (e *Engine) personalResponse(tenant, lang string) *domain.ChatResponse {
	if lang == "en" {
		return domain.SimpleResponse("I am a virtual assistant from " + kb.DisplayName(tenant) +
			". I can help with products, services, appointments and orders.")
	}
	return domain.SimpleResponse("Soy una asistente virtual de " + kb.DisplayName(tenant) +
		". Puedo ayudarte con productos, servicios, citas y pedidos.")
}

func (e *Engine) smalltalkResponse(lang string) *domain.ChatResponse {
	if lang == "en" {
		return domain.SimpleResponse("Quick one: why did the lead cross the funnel? To become a sale. " +
			"If you want, we continue with your request.")
	}
	return domain.SimpleResponse("Uno rapido: por que un lead cruza el embudo? Para convertirse en venta. " +
		"Si quieres, seguimos con tu consulta.")
}

func (e *Engine) privacyResponse(lang string) *domain.ChatResponse {
	if lang == "en" {
		return domain.SimpleResponse("Demo privacy note: avoid sharing sensitive personal data here. " +
			"This chat is for product and service guidance.")
	}
	return domain.SimpleResponse("Nota de privacidad demo: evita compartir datos personales sensibles aqui. " +
		"Este chat es para orientacion de productos y servicios.")
}

func (e *Engine) identityResponse(tenant, lang string) *domain.ChatResponse {
	company, ok := e.findCompanyProfile(tenant, nil)
	if !ok {
		return e.outOfScopeResponse(tenant, lang)
	}
	address := kb.ExtractNoteField(company.Notes, "Direccion central:", "Oficina principal:")
	phone := kb.ExtractNoteField(company.Notes, "Telefono:")
	email := kb.ExtractNoteField(company.Notes, "Email:")

	var b strings.Builder
	if lang == "en" {
		b.WriteString("I am the commercial assistant of " + kb.DisplayName(tenant) + ".\n")
		b.WriteString("- What we do: " + company.Description)
		if address != "" {
			b.WriteString("\n- Office: " + address)
		}
		if phone != "" {
			b.WriteString("\n- Phone: " + phone)
		}
		if email != "" {
			b.WriteString("\n- Email: " + email)
		}
	} else {
		b.WriteString("Soy la asistente comercial de " + kb.DisplayName(tenant) + ".\n")
		b.WriteString("- A que nos dedicamos: " + company.Description)
		if address != "" {
			b.WriteString("\n- Oficina: " + address)
		}
		if phone != "" {
			b.WriteString("\n- Telefono: " + phone)
		}
		if email != "" {
			b.WriteString("\n- Email: " + email)
		}
	}
	return domain.SimpleResponse(b.String())
}

// locationResponse answers where the office is. shortMode trims the
// reply to the address only, for users who asked for just that.
func (e *Engine) locationResponse(tenant, lang string, shortMode bool) *domain.ChatResponse {
	company, ok := e.findCompanyProfile(tenant, nil)
	if !ok {
		return e.outOfScopeResponse(tenant, lang)
	}
	address := kb.ExtractNoteField(company.Notes, "Direccion central:", "Oficina principal:")
	if address == "" {
		return e.outOfScopeResponse(tenant, lang)
	}
	phone := kb.ExtractNoteField(company.Notes, "Telefono:")
	email := kb.ExtractNoteField(company.Notes, "Email:")
	schedule := kb.ExtractNoteField(company.Notes, "Horario:")
	if schedule == "" {
		if lang == "en" {
			schedule = "Mon-Fri 09:30 to 19:00"
		} else {
			schedule = "L-V de 9:30 a 19:00"
		}
	}

	if shortMode {
		if lang == "en" {
			return domain.SimpleResponse("Address: " + address + "\nWould you like schedule or Google Maps location?")
		}
		return domain.SimpleResponse("Direccion: " + address + "\nQuieres tambien el horario o la ubicacion en Google Maps?")
	}

	var b strings.Builder
	if lang == "en" {
		b.WriteString("We are at " + address + ".\n- Schedule: " + schedule)
		if phone != "" {
			b.WriteString("\n- Phone: " + phone)
		}
		if email != "" {
			b.WriteString("\n- Email: " + email)
		}
		b.WriteString("\nWould you like Google Maps location or to schedule an appointment?")
	} else {
		b.WriteString("Estamos en " + address + ".\n- Horario: " + schedule)
		if phone != "" {
			b.WriteString("\n- Telefono: " + phone)
		}
		if email != "" {
			b.WriteString("\n- Email: " + email)
		}
		b.WriteString("\nQuieres que te envie la ubicacion en Google Maps o concertar una cita?")
	}
	return domain.SimpleResponse(b.String())
}

func (e *Engine) directionsResponse(tenant, lang, normalizedMessage string) *domain.ChatResponse {
	company, ok := e.findCompanyProfile(tenant, nil)
	if !ok {
		return e.outOfScopeResponse(tenant, lang)
	}
	address := kb.ExtractNoteField(company.Notes, "Direccion central:", "Oficina principal:")
	if address == "" {
		return e.outOfScopeResponse(tenant, lang)
	}

	asksParking := containsAny(normalizedMessage, "parking", "aparcamiento")
	asksTransport := containsAny(normalizedMessage, "transporte", "metro", "bus", "autobus", "public transport")

	var b strings.Builder
	if lang == "en" {
		b.WriteString("Address: " + address + ".\n")
		if asksParking {
			b.WriteString("For parking, check live availability near the office before you go.\n")
		}
		if asksTransport {
			b.WriteString("For public transport, use this address in your route app to see current options.\n")
		}
		b.WriteString("If you want, I can share a map link and help you book a visit.")
	} else {
		b.WriteString("Direccion: " + address + ".\n")
		if asksParking {
			b.WriteString("Para parking, revisa disponibilidad en tiempo real cerca de la oficina.\n")
		}
		if asksTransport {
			b.WriteString("Para transporte publico, usa esta direccion en tu app de rutas para ver opciones actuales.\n")
		}
		b.WriteString("Si quieres, te envio ubicacion para mapa y te ayudo a concertar una visita.")
	}
	return domain.SimpleResponse(strings.TrimSpace(b.String()))
}

func (e *Engine) contactInfoResponse(tenant, lang, normalizedMessage string) *domain.ChatResponse {
	if asksDirections(normalizedMessage) {
		return e.directionsResponse(tenant, lang, normalizedMessage)
	}
	company, ok := e.findCompanyProfile(tenant, nil)
	if !ok {
		return e.outOfScopeResponse(tenant, lang)
	}
	address := kb.ExtractNoteField(company.Notes, "Direccion central:", "Oficina principal:")
	phone := kb.ExtractNoteField(company.Notes, "Telefono:")
	email := kb.ExtractNoteField(company.Notes, "Email:")
	schedule := kb.ExtractNoteField(company.Notes, "Horario:")

	asksWhatsapp := containsAny(normalizedMessage, "whatsapp", "wsp", "wasap")
	asksHuman := containsAny(normalizedMessage,
		"persona real", "humano", "humana", "agente", "ventas", "soporte", "responsable", "supervisor", "hablar con",
		"real person", "human", "agent", "sales", "support", "manager")

	var b strings.Builder
	if lang == "en" {
		b.WriteString("Contact details for " + kb.DisplayName(tenant) + ":\n")
		if address != "" {
			b.WriteString("- Address: " + address + "\n")
		}
		if schedule != "" {
			b.WriteString("- Schedule: " + schedule + "\n")
		}
		if phone != "" {
			b.WriteString("- Phone: " + phone + "\n")
		}
		if email != "" {
			b.WriteString("- Email: " + email + "\n")
		}
		if asksWhatsapp && phone != "" {
			b.WriteString("- WhatsApp: available on " + phone + ".\n")
		}
		if asksHuman {
			b.WriteString("If you want, " + kb.HumanContact(tenant, lang) + " can contact you directly.")
		}
	} else {
		b.WriteString("Datos de contacto de " + kb.DisplayName(tenant) + ":\n")
		if address != "" {
			b.WriteString("- Direccion: " + address + "\n")
		}
		if schedule != "" {
			b.WriteString("- Horario: " + schedule + "\n")
		}
		if phone != "" {
			b.WriteString("- Telefono: " + phone + "\n")
		}
		if email != "" {
			b.WriteString("- Email: " + email + "\n")
		}
		if asksWhatsapp && phone != "" {
			b.WriteString("- WhatsApp: disponible en " + phone + ".\n")
		}
		if asksHuman {
			b.WriteString("Si quieres, " + kb.HumanContact(tenant, lang) + " te contacta directamente.")
		}
	}
	return domain.SimpleResponse(strings.TrimSpace(b.String()))
}

func (e *Engine) catalogResponse(tenant, lang string) *domain.ChatResponse {
	services := e.listSellableItems(tenant, 6)
	if len(services) == 0 {
		return e.outOfScopeResponse(tenant, lang)
	}

	var b strings.Builder
	if lang == "en" {
		b.WriteString("These are the main categories available:\n")
	} else {
		b.WriteString("Estas son las principales categorias disponibles:\n")
	}
	for _, service := range services {
		b.WriteString("- " + service.Title + " (" + service.Price + ")\n")
	}
	switch kb.NormalizeTenant(tenant) {
	case kb.TenantC:
		if lang == "en" {
			b.WriteString("For parts, share vehicle brand/model, year, engine, or VIN.")
		} else {
			b.WriteString("Para recambios, dime marca/modelo del vehiculo, ano, motor o VIN.")
		}
	case kb.TenantA:
		if lang == "en" {
			b.WriteString("If you are searching properties, share area, budget and bedrooms.")
		} else {
			b.WriteString("Si buscas vivienda, dime zona, presupuesto y habitaciones.")
		}
	default:
		if lang == "en" {
			b.WriteString("Tell me your objective and I suggest the best starting option.")
		} else {
			b.WriteString("Si me dices tu objetivo, te recomiendo la mejor opcion de arranque.")
		}
	}
	return domain.SimpleResponse(strings.TrimSpace(b.String()))
}

// propertySearchResponse starts the qualification flow for the
// real-estate tenant and redirects everyone else.
func (e *Engine) propertySearchResponse(state *Session, tenant, lang string) *domain.ChatResponse {
	if kb.NormalizeTenant(tenant) != kb.TenantA {
		if lang == "en" {
			return domain.SimpleResponse("You are currently speaking with " + kb.DisplayName(tenant) +
				". Switch to Urbania Nexus Inmobiliaria for property search.")
		}
		return domain.SimpleResponse("Ahora mismo te atiendo desde " + kb.DisplayName(tenant) +
			". Cambia a Urbania Nexus Inmobiliaria para busqueda de viviendas.")
	}

	state.Clear()
	state.Flow = domain.FlowPropiedadZona
	if lang == "en" {
		return domain.SimpleResponse("Great. To show available properties, tell me area or city first.")
	}
	return domain.SimpleResponse("Claro. Para mostrarte viviendas disponibles, dime primero zona o ciudad.")
}

func (e *Engine) outOfScopeResponse(tenant, lang string) *domain.ChatResponse {
	return domain.SimpleResponse(e.outOfScopeReply(tenant, lang))
}

func (e *Engine) outOfScopeReply(tenant, lang string) string {
	if lang == "en" {
		return "I can help you with services, products, pricing, appointments and support from " +
			kb.DisplayName(tenant) + ".\nIf you need a tailored answer, " + kb.HumanContact(tenant, lang) +
			" can contact you with a personalized answer."
	}
	return "Puedo ayudarte con servicios, productos, precios, citas y soporte de " +
		kb.DisplayName(tenant) + ".\nSi necesitas una respuesta mas personalizada, " + kb.HumanContact(tenant, lang) +
		" te contactara con una respuesta mas personalizada."
}

// fallbackReply is the deterministic answer used whenever the
// generation service yields nothing. Executed cart actions are echoed
// first, then the most specific matching template wins.
func (e *Engine) fallbackReply(
	tenant, lang, message string,
	actions []domain.ChatAction,
	actionItem *domain.KbItem,
	matches []domain.SearchMatch,
	cart []domain.CartEntry,
) string {
	en := lang == "en"
	normalized := Normalize(message)
	var b strings.Builder

	for _, action := range actions {
		switch strings.ToUpper(action.Type) {
		case domain.ActionAdd:
			if actionItem != nil {
				if en {
					b.WriteString("Perfect, I added this to your cart: ")
				} else {
					b.WriteString("Perfecto, ya lo anadi al carrito: ")
				}
				b.WriteString(actionItem.Title + " (" + actionItem.Price + ").\n")
			}
		case domain.ActionRemove:
			if actionItem != nil {
				if en {
					b.WriteString("Done, I removed it from your cart: ")
				} else {
					b.WriteString("Listo, lo quite del carrito: ")
				}
				b.WriteString(actionItem.Title + ".\n")
			}
		case domain.ActionClear:
			if en {
				b.WriteString("I cleared your cart.\n")
			} else {
				b.WriteString("He vaciado tu carrito.\n")
			}
		case domain.ActionShow:
			if en {
				b.WriteString("Current cart summary:\n")
			} else {
				b.WriteString("Resumen actual del carrito:\n")
			}
			b.WriteString(cartSummary(cart) + "\n")
		}
	}

	if len(matches) == 0 {
		b.WriteString(e.outOfScopeReply(tenant, lang))
		return strings.TrimSpace(b.String())
	}

	if asksInventory(normalized) && kb.NormalizeTenant(tenant) != kb.TenantC {
		if en {
			b.WriteString("Right now I do not have a live inventory of properties or units in this knowledge base.\n")
			b.WriteString("If you want, " + kb.HumanContact(tenant, lang) +
				" will contact you with a personalized availability report.")
		} else {
			b.WriteString("Ahora mismo no tengo inventario en vivo de pisos o locales dentro de esta base.\n")
			b.WriteString("Si te parece, " + kb.HumanContact(tenant, lang) +
				" te contactara con disponibilidad personalizada.")
		}
		return strings.TrimSpace(b.String())
	}

	if asksCompanyOverview(normalized) {
		company, ok := e.findCompanyProfile(tenant, matches)
		if !ok {
			b.WriteString(e.outOfScopeReply(tenant, lang))
			return strings.TrimSpace(b.String())
		}
		if en {
			b.WriteString("Of course. Here is a quick summary of " + kb.DisplayName(tenant) + ":\n")
			b.WriteString("- What they do: " + company.Description + "\n")
			b.WriteString("- Main value: " + company.Benefits + "\n")
			b.WriteString("- Contact details: " + company.Notes)
		} else {
			b.WriteString("Claro. Te resumo rapidamente " + kb.DisplayName(tenant) + ":\n")
			b.WriteString("- A que se dedica: " + company.Description + "\n")
			b.WriteString("- Valor principal: " + company.Benefits + "\n")
			b.WriteString("- Contacto: " + company.Notes)
		}
		return strings.TrimSpace(b.String())
	}

	if asksServiceList(normalized) {
		services := e.listSellableItems(tenant, 6)
		if en {
			b.WriteString("Great, these are the main services/products available:\n")
		} else {
			b.WriteString("Genial, estos son los principales servicios/productos disponibles:\n")
		}
		for _, service := range services {
			b.WriteString("- " + service.Title + " (" + service.Price + ")\n")
		}
		if en {
			b.WriteString("Tell me your goal and I will suggest the best starting package.")
		} else {
			b.WriteString("Si me dices tu objetivo, te recomiendo el paquete de arranque mas adecuado.")
		}
		return strings.TrimSpace(b.String())
	}

	if isRecommendationRequest(message) {
		if plan, ok := e.findBestPlan(tenant, matches); ok {
			if en {
				b.WriteString("Good idea. I suggest starting with:\n")
				b.WriteString("- " + plan.Title + " (" + plan.Price + ")\n")
				b.WriteString("Why this option: " + plan.Benefits + "\n")
				b.WriteString("If you want, " + kb.HumanContact(tenant, lang) +
					" can contact you to define a personalized rollout plan.")
			} else {
				b.WriteString("Buena idea. Yo empezaria por:\n")
				b.WriteString("- " + plan.Title + " (" + plan.Price + ")\n")
				b.WriteString("Por que esta opcion: " + plan.Benefits + "\n")
				b.WriteString("Si quieres, " + kb.HumanContact(tenant, lang) +
					" te contacta para definir un plan personalizado de implantacion.")
			}
			return strings.TrimSpace(b.String())
		}
	}

	top := matches[0].Item
	if en {
		b.WriteString("Based on what you asked, this is the best fit right now:\n")
		b.WriteString("- " + top.Title + " (" + top.Price + ")\n")
		b.WriteString("What it includes: " + top.Description + "\n")
		b.WriteString("Main benefit: " + top.Benefits + "\n")
		b.WriteString("If you need a more tailored answer, " + kb.HumanContact(tenant, lang) +
			" can contact you directly.")
	} else {
		b.WriteString("Por lo que me comentas, esta es la opcion mas ajustada ahora:\n")
		b.WriteString("- " + top.Title + " (" + top.Price + ")\n")
		b.WriteString("Que incluye: " + top.Description + "\n")
		b.WriteString("Beneficio principal: " + top.Benefits + "\n")
		b.WriteString("Si necesitas una respuesta mas personalizada, " + kb.HumanContact(tenant, lang) +
			" puede contactarte directamente.")
	}
	return strings.TrimSpace(b.String())
}

// findCompanyProfile prefers a company record among the matches, then
// falls back to the tenant's item list.
func (e *Engine) findCompanyProfile(tenant string, matches []domain.SearchMatch) (domain.KbItem, bool) {
	for _, match := range matches {
		if strings.EqualFold(match.Item.Type, "empresa") {
			return match.Item, true
		}
	}
	for _, item := range e.kb.ListItems(tenant) {
		if strings.EqualFold(item.Type, "empresa") {
			return item, true
		}
	}
	return domain.KbItem{}, false
}

func isSellableType(itemType string) bool {
	switch strings.ToLower(itemType) {
	case "empresa", "faq", "caso":
		return false
	default:
		return true
	}
}

func (e *Engine) listSellableItems(tenant string, limit int) []domain.KbItem {
	var sellable []domain.KbItem
	for _, item := range e.kb.ListItems(tenant) {
		if !isSellableType(item.Type) {
			continue
		}
		sellable = append(sellable, item)
		if len(sellable) == limit {
			break
		}
	}
	return sellable
}

func isPlanLikeType(itemType string) bool {
	switch strings.ToLower(itemType) {
	case "plan", "servicio", "app", "producto":
		return true
	default:
		return false
	}
}

func (e *Engine) findBestPlan(tenant string, matches []domain.SearchMatch) (domain.KbItem, bool) {
	for _, match := range matches {
		if isPlanLikeType(match.Item.Type) {
			return match.Item, true
		}
	}
	for _, item := range e.kb.ListItems(tenant) {
		if isPlanLikeType(item.Type) {
			return item, true
		}
	}
	if items := e.kb.ListItems(tenant); len(items) > 0 {
		return items[0], true
	}
	return domain.KbItem{}, false
}

// defaultRecommendations substitutes up to three non-company items at
// a flat score when a recommendation request matched nothing.
func (e *Engine) defaultRecommendations(tenant string) []domain.SearchMatch {
	var matches []domain.SearchMatch
	for _, item := range e.kb.ListItems(tenant) {
		if strings.EqualFold(item.Type, "empresa") {
			continue
		}
		matches = append(matches, domain.SearchMatch{Item: item, Score: 0.20})
		if len(matches) == 3 {
			break
		}
	}
	return matches
}

func cartSummary(cart []domain.CartEntry) string {
	if len(cart) == 0 {
		return "[]"
	}
	lines := make([]string, 0, len(cart))
	for _, entry := range cart {
		title := entryOrDefault(entry, "title", "item")
		id := entryOrDefault(entry, "id", "N/A")
		qty := entryOrDefault(entry, "qty", "1")
		price := entryOrDefault(entry, "price", "0 EUR")
		lines = append(lines, title+"("+id+") x"+qty+" "+price)
	}
	return strings.Join(lines, "; ")
}

func entryOrDefault(entry domain.CartEntry, key, fallback string) string {
	if v, ok := entry[key]; ok && v != nil {
		if s := stringify(v); s != "" {
			return s
		}
	}
	return fallback
}
