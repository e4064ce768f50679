package domain

// Flow is a position in one of the guided multi-step collection
// sequences. FlowNone means no structured flow is active.
type Flow string

const (
	FlowNone Flow = ""

	// Appointment booking: motive, date, time, mode, contact.
	FlowCitaMotivo    Flow = "CITA_MOTIVO"
	FlowCitaFecha     Flow = "CITA_FECHA"
	FlowCitaHora      Flow = "CITA_HORA"
	FlowCitaModalidad Flow = "CITA_MODALIDAD"
	FlowCitaContacto  Flow = "CITA_CONTACTO"

	// Property qualification: zone, budget, bedrooms, type, goal.
	FlowPropiedadZona         Flow = "PROPIEDAD_ZONA"
	FlowPropiedadPresupuesto  Flow = "PROPIEDAD_PRESUPUESTO"
	FlowPropiedadHabitaciones Flow = "PROPIEDAD_HABITACIONES"
	FlowPropiedadTipo         Flow = "PROPIEDAD_TIPO"
	FlowPropiedadObjetivo     Flow = "PROPIEDAD_OBJETIVO"

	// Cart vehicle-data collection, single step.
	FlowCarritoDatosVehiculo Flow = "CARRITO_DATOS_VEHICULO"
)
