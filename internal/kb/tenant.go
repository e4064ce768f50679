package kb

import (
	"strings"

	"github.com/nebulasur/ventia/internal/domain"
)

// Tenant identifiers. Anything unrecognized normalizes to tenant A.
const (
	TenantA = "A" // Urbania Nexus Inmobiliaria (real estate)
	TenantB = "B" // LeadWave Growth Marketing (marketing)
	TenantC = "C" // MotoRecambio Atlas (vehicle parts)
)

// NormalizeTenant maps a raw tenant/kb identifier onto a known tenant.
func NormalizeTenant(raw string) string {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case TenantB:
		return TenantB
	case TenantC:
		return TenantC
	default:
		return TenantA
	}
}

// DisplayName returns the tenant's public company name.
func DisplayName(tenant string) string {
	switch NormalizeTenant(tenant) {
	case TenantB:
		return "LeadWave Growth Marketing"
	case TenantC:
		return "MotoRecambio Atlas"
	default:
		return "Urbania Nexus Inmobiliaria"
	}
}

// HumanContact names the specialist offered for human escalation.
func HumanContact(tenant, lang string) string {
	en := lang == "en"
	switch NormalizeTenant(tenant) {
	case TenantB:
		if en {
			return "Diego Martin (Senior Growth Consultant)"
		}
		return "Diego Martin (Consultor Growth Senior)"
	case TenantC:
		if en {
			return "Marta Velasco (Parts Operations Lead)"
		}
		return "Marta Velasco (Responsable de Operaciones de Recambios)"
	default:
		if en {
			return "Laura Serrano (Senior Real Estate Advisor)"
		}
		return "Laura Serrano (Asesora Inmobiliaria Senior)"
	}
}

// TenantProfile carries the persona facts used to build the system
// prompt for windowed conversations.
type TenantProfile struct {
	Company      string
	AgentName    string
	Sector       string
	Capabilities []string
	Address      string
	Schedule     string
	Phone        string
	Email        string
}

// DefaultProfile returns the baked-in persona for a tenant. Fields are
// overridden by the KB company record when one is loaded.
func DefaultProfile(tenant, lang string) TenantProfile {
	en := lang == "en"
	switch NormalizeTenant(tenant) {
	case TenantB:
		p := TenantProfile{
			Company:   "LeadWave Growth Marketing",
			AgentName: "Diego Martin",
			Address:   "Avenida Diagonal 487, Barcelona",
			Phone:     "+34 931 880 225",
			Email:     "hola@leadwavegrowth.demo",
		}
		if en {
			p.Sector = "marketing, advertising and sales"
			p.Capabilities = []string{"lead generation", "sales automation", "campaign analytics"}
			p.Schedule = "Mon-Fri 08:30 to 19:30"
		} else {
			p.Sector = "marketing, publicidad y ventas"
			p.Capabilities = []string{"captacion de leads", "automatizacion comercial", "analitica de campanas"}
			p.Schedule = "L-V de 8:30 a 19:30"
		}
		return p
	case TenantC:
		p := TenantProfile{
			Company:   "MotoRecambio Atlas",
			AgentName: "Marta Velasco",
			Address:   "Poligono Industrial La Estrella, Nave 12, Zaragoza",
			Phone:     "+34 976 550 410",
			Email:     "ventas@motorecambioatlas.demo",
		}
		if en {
			p.Sector = "vehicle parts warehousing and distribution"
			p.Capabilities = []string{"VIN validation", "multi-brand catalog", "urgent delivery"}
			p.Schedule = "Mon-Fri 08:00-19:00"
		} else {
			p.Sector = "almacen y distribucion de recambios"
			p.Capabilities = []string{"validacion por VIN", "catalogo multimarca", "entrega urgente"}
			p.Schedule = "L-V 08:00-19:00"
		}
		return p
	default:
		p := TenantProfile{
			Company:   "Urbania Nexus Inmobiliaria",
			AgentName: "Laura Serrano",
			Address:   "Calle Orense 18, Madrid (zona AZCA)",
			Phone:     "+34 910 240 118",
			Email:     "contacto@urbanianexus.demo",
		}
		if en {
			p.Sector = "real estate and construction"
			p.Capabilities = []string{"property search", "office information", "commercial appointments"}
			p.Schedule = "Mon-Fri 09:30 to 19:00"
		} else {
			p.Sector = "inmobiliario y construccion"
			p.Capabilities = []string{"busqueda de viviendas", "informacion de oficina", "citas comerciales"}
			p.Schedule = "L-V de 9:30 a 19:00"
		}
		return p
	}
}

// ProfileFromItems builds the tenant persona, letting the loaded
// company record override the baked-in contact details.
func ProfileFromItems(tenant, lang string, items []domain.KbItem) TenantProfile {
	profile := DefaultProfile(tenant, lang)

	var company *domain.KbItem
	for i := range items {
		if strings.EqualFold(items[i].Type, "empresa") {
			company = &items[i]
			break
		}
	}
	if company == nil {
		return profile
	}

	if name := strings.TrimSpace(strings.ReplaceAll(company.Title, " - Perfil corporativo", "")); name != "" {
		profile.Company = name
	}
	if v := ExtractNoteField(company.Notes, "Direccion central:", "Oficina principal:"); v != "" {
		profile.Address = v
	}
	if v := ExtractNoteField(company.Notes, "Telefono:"); v != "" {
		profile.Phone = v
	}
	if v := ExtractNoteField(company.Notes, "Email:"); v != "" {
		profile.Email = v
	}
	if v := ExtractNoteField(company.Notes, "Horario:"); v != "" {
		profile.Schedule = v
	}
	return profile
}

// ExtractNoteField pulls a labeled segment out of a notes blob. The
// segment runs from the first matching label to the next ". ".
func ExtractNoteField(notes string, labels ...string) string {
	if strings.TrimSpace(notes) == "" {
		return ""
	}
	for _, label := range labels {
		start := strings.Index(notes, label)
		if start < 0 {
			continue
		}
		rest := strings.TrimSpace(notes[start+len(label):])
		if end := strings.Index(rest, ". "); end >= 0 {
			return strings.TrimSpace(rest[:end])
		}
		return rest
	}
	return ""
}
