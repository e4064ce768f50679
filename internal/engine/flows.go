package engine

import (
	"github.com/nebulasur/ventia/internal/domain"
	"github.com/nebulasur/ventia/internal/kb"
)

// handlePendingFlow advances the active guided flow, if any. It
// returns nil when no flow is active so the caller falls through to
// the normal pipeline. Cancellation and interruptions are resolved
// before the step itself.
func (e *Engine) handlePendingFlow(
	state *Session,
	tenant, lang, rawMessage, normalizedMessage string,
	intent domain.Intent,
	actions ActionResult,
) *domain.ChatResponse {
	if state.Flow == domain.FlowNone {
		return nil
	}

	if wantsToCancelFlow(normalizedMessage) {
		state.Clear()
		if lang == "en" {
			return domain.SimpleResponse("Done. I canceled the active process. How can I help you now?")
		}
		return domain.SimpleResponse("Perfecto. He cancelado el proceso activo. Como quieres que te ayude ahora?")
	}

	// A side question mid-flow gets answered in place, then the flow
	// question is repeated without advancing. Cart actions are exempt
	// so "add X" inside the vehicle step still reaches the step logic.
	if intent != domain.IntentDefault && intent != domain.IntentAppointment && !actions.HasActions() {
		if interruption := e.interruptionResponse(state, tenant, lang, normalizedMessage, intent); interruption != nil {
			interruption.Reply += "\n\n" + pendingQuestion(state.Flow, lang)
			return interruption
		}
	}

	en := lang == "en"
	switch state.Flow {
	case domain.FlowCitaMotivo:
		if !isValidReason(rawMessage) {
			if en {
				return domain.SimpleResponse("Please tell me the reason for the appointment (for example: advisory, quote, follow-up).")
			}
			return domain.SimpleResponse("Indica el motivo de la cita (por ejemplo: asesoria, presupuesto, seguimiento).")
		}
		state.Put("cita_motivo", rawMessage)
		state.Flow = domain.FlowCitaFecha
		if en {
			return domain.SimpleResponse("Great. What date works best for you?")
		}
		return domain.SimpleResponse("Genial. Que fecha te viene mejor?")

	case domain.FlowCitaFecha:
		if !looksLikeDate(normalizedMessage) {
			if en {
				return domain.SimpleResponse("I need a date to continue (for example: tomorrow, Thursday, 15/02).")
			}
			return domain.SimpleResponse("Necesito una fecha para continuar (por ejemplo: manana, jueves, 15/02).")
		}
		state.Put("cita_fecha", rawMessage)
		state.Flow = domain.FlowCitaHora
		if en {
			return domain.SimpleResponse("Perfect. What time do you prefer?")
		}
		return domain.SimpleResponse("Perfecto. Que hora prefieres?")

	case domain.FlowCitaHora:
		if !looksLikeTime(normalizedMessage) {
			if en {
				return domain.SimpleResponse("I need a valid time (for example: 10:30, afternoon, after 17:00).")
			}
			return domain.SimpleResponse("Necesito una hora valida (por ejemplo: 10:30, por la tarde, despues de las 17:00).")
		}
		state.Put("cita_hora", rawMessage)
		state.Flow = domain.FlowCitaModalidad
		if en {
			return domain.SimpleResponse("In-person or online?")
		}
		return domain.SimpleResponse("Presencial u online?")

	case domain.FlowCitaModalidad:
		if !looksLikeMode(normalizedMessage) {
			if en {
				return domain.SimpleResponse("Please choose one mode: in-person or online.")
			}
			return domain.SimpleResponse("Elige una modalidad: presencial u online.")
		}
		state.Put("cita_modalidad", normalizeMode(normalizedMessage, lang))
		state.Flow = domain.FlowCitaContacto
		if en {
			return domain.SimpleResponse("Last step. What phone or email should we use to confirm?")
		}
		return domain.SimpleResponse("Ultimo paso. A que telefono o email te confirmamos?")

	case domain.FlowCitaContacto:
		if !looksLikeContact(rawMessage) {
			if en {
				return domain.SimpleResponse("I need a valid phone or email to confirm the appointment.")
			}
			return domain.SimpleResponse("Necesito un telefono o email valido para confirmar la cita.")
		}
		state.Put("cita_contacto", rawMessage)
		var summary string
		if en {
			summary = "Perfect, your appointment request is ready:\n" +
				"- Reason: " + state.Get("cita_motivo") + "\n" +
				"- Date: " + state.Get("cita_fecha") + "\n" +
				"- Time: " + state.Get("cita_hora") + "\n" +
				"- Mode: " + state.Get("cita_modalidad") + "\n" +
				"- Contact: " + state.Get("cita_contacto") + "\n" +
				kb.HumanContact(tenant, lang) + " will contact you shortly."
		} else {
			summary = "Perfecto, ya tengo tu solicitud de cita:\n" +
				"- Motivo: " + state.Get("cita_motivo") + "\n" +
				"- Fecha: " + state.Get("cita_fecha") + "\n" +
				"- Hora: " + state.Get("cita_hora") + "\n" +
				"- Modalidad: " + state.Get("cita_modalidad") + "\n" +
				"- Contacto: " + state.Get("cita_contacto") + "\n" +
				kb.HumanContact(tenant, lang) + " te contactara en breve."
		}
		state.Clear()
		return domain.SimpleResponse(summary)

	case domain.FlowPropiedadZona:
		if !looksLikeZone(normalizedMessage) {
			if en {
				return domain.SimpleResponse("Tell me area or city first.")
			}
			return domain.SimpleResponse("Dime primero zona o ciudad.")
		}
		state.Put("prop_zona", rawMessage)
		state.Flow = domain.FlowPropiedadPresupuesto
		if en {
			return domain.SimpleResponse("Great. What budget do you have?")
		}
		return domain.SimpleResponse("Perfecto. Que presupuesto manejas?")

	case domain.FlowPropiedadPresupuesto:
		if !looksLikeBudget(normalizedMessage) {
			if en {
				return domain.SimpleResponse("Please share an approximate budget.")
			}
			return domain.SimpleResponse("Indica un presupuesto aproximado.")
		}
		state.Put("prop_presupuesto", rawMessage)
		state.Flow = domain.FlowPropiedadHabitaciones
		if en {
			return domain.SimpleResponse("How many bedrooms do you need?")
		}
		return domain.SimpleResponse("Cuantas habitaciones necesitas?")

	case domain.FlowPropiedadHabitaciones:
		if !looksLikeRooms(normalizedMessage) {
			if en {
				return domain.SimpleResponse("How many bedrooms?")
			}
			return domain.SimpleResponse("Cuantas habitaciones?")
		}
		state.Put("prop_habitaciones", rawMessage)
		state.Flow = domain.FlowPropiedadTipo
		if en {
			return domain.SimpleResponse("What type are you looking for? (apartment, house, new build, investment)")
		}
		return domain.SimpleResponse("Que tipo buscas? (piso, chalet, obra nueva, inversion)")

	case domain.FlowPropiedadTipo:
		if !looksLikePropertyType(normalizedMessage) {
			if en {
				return domain.SimpleResponse("Choose type: apartment, house, new build, investment, commercial.")
			}
			return domain.SimpleResponse("Elige tipo: piso, chalet, obra nueva, inversion o local.")
		}
		state.Put("prop_tipo", rawMessage)
		state.Flow = domain.FlowPropiedadObjetivo
		if en {
			return domain.SimpleResponse("Is it for living or investment?")
		}
		return domain.SimpleResponse("Es para vivir o inversion?")

	case domain.FlowPropiedadObjetivo:
		if !looksLikeGoal(normalizedMessage) {
			if en {
				return domain.SimpleResponse("Is it for living, renting or investment?")
			}
			return domain.SimpleResponse("Es para vivir, alquilar o inversion?")
		}
		state.Put("prop_objetivo", rawMessage)
		state.Clear()
		if en {
			return domain.SimpleResponse("Perfect. I have your profile and can prepare matching options.")
		}
		return domain.SimpleResponse("Perfecto. Ya tengo tu perfil y puedo prepararte opciones.")

	case domain.FlowCarritoDatosVehiculo:
		if !looksLikeVehicleData(normalizedMessage) {
			if en {
				return domain.SimpleResponse("I still need vehicle data: brand/model, year, engine, or VIN.")
			}
			return domain.SimpleResponse("Necesito datos del vehiculo: marca/modelo, ano, motor o VIN.")
		}
		item, found := e.kb.FindByID(tenant, state.Get("cart_item_id"))
		state.Clear()
		if !found {
			return e.outOfScopeResponse(tenant, lang)
		}
		var response *domain.ChatResponse
		if en {
			response = domain.SimpleResponse("Perfect, I added " + item.Title + " to your cart.")
		} else {
			response = domain.SimpleResponse("Perfecto, he anadido " + item.Title + " al carrito.")
		}
		response.Actions = []domain.ChatAction{{Type: domain.ActionAdd, ItemID: item.ID}}
		response.Item = item.APIMap()
		return response
	}

	return nil
}

func (e *Engine) interruptionResponse(state *Session, tenant, lang, normalizedMessage string, intent domain.Intent) *domain.ChatResponse {
	en := lang == "en"
	switch intent {
	case domain.IntentLocation:
		return e.locationResponse(tenant, lang, isLocationOnlyRequest(normalizedMessage) || showsFrustration(normalizedMessage))
	case domain.IntentDirections:
		return e.directionsResponse(tenant, lang, normalizedMessage)
	case domain.IntentIdentity:
		return e.identityResponse(tenant, lang)
	case domain.IntentPropertySearch:
		if en {
			return domain.SimpleResponse("Sure. For property search I need area, budget, bedrooms, type and goal.")
		}
		return domain.SimpleResponse("Claro. Para busqueda de vivienda necesito zona, presupuesto, habitaciones, tipo y objetivo.")
	case domain.IntentCatalog:
		return e.catalogResponse(tenant, lang)
	case domain.IntentGreeting:
		if en {
			return domain.SimpleResponse("Hi, I am still with you.")
		}
		return domain.SimpleResponse("Hola, sigo aqui contigo.")
	case domain.IntentSmalltalk:
		if en {
			return domain.SimpleResponse("Sure. And now, let us continue where we left off.")
		}
		return domain.SimpleResponse("Claro. Y ahora continuamos donde lo dejamos.")
	case domain.IntentPersonal:
		if en {
			return domain.SimpleResponse("I am a virtual assistant, and I can continue helping with your request.")
		}
		return domain.SimpleResponse("Soy una asistente virtual, y puedo seguir ayudandote con tu solicitud.")
	case domain.IntentPrivacy:
		if en {
			return domain.SimpleResponse("I cannot share third-party private order data.")
		}
		return domain.SimpleResponse("No puedo compartir datos privados de pedidos de terceros.")
	default:
		return nil
	}
}

func pendingQuestion(flow domain.Flow, lang string) string {
	en := lang == "en"
	switch flow {
	case domain.FlowCitaMotivo:
		if en {
			return "To continue, what is the reason for the appointment?"
		}
		return "Para continuar, cual es el motivo de la cita?"
	case domain.FlowCitaFecha:
		if en {
			return "To continue, what date works best for you?"
		}
		return "Para continuar, que fecha te viene bien?"
	case domain.FlowCitaHora:
		if en {
			return "To continue, what time do you prefer?"
		}
		return "Para continuar, que hora prefieres?"
	case domain.FlowCitaModalidad:
		if en {
			return "To continue, choose in-person or online."
		}
		return "Para continuar, elige presencial u online."
	case domain.FlowCitaContacto:
		if en {
			return "To finish, share phone or email."
		}
		return "Para terminar, comparte telefono o email."
	case domain.FlowPropiedadZona:
		if en {
			return "To continue, tell me area or city."
		}
		return "Para continuar, dime zona o ciudad."
	case domain.FlowPropiedadPresupuesto:
		if en {
			return "To continue, tell me your budget."
		}
		return "Para continuar, dime presupuesto."
	case domain.FlowPropiedadHabitaciones:
		if en {
			return "To continue, how many bedrooms?"
		}
		return "Para continuar, cuantas habitaciones?"
	case domain.FlowPropiedadTipo:
		if en {
			return "To continue, what type?"
		}
		return "Para continuar, que tipo?"
	case domain.FlowPropiedadObjetivo:
		if en {
			return "To continue, is it for living or investment?"
		}
		return "Para continuar, es para vivir o inversion?"
	case domain.FlowCarritoDatosVehiculo:
		if en {
			return "To continue, share vehicle details."
		}
		return "Para continuar, comparte datos del vehiculo."
	default:
		return ""
	}
}
