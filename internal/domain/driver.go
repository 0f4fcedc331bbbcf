package domain

// Certification held by a driver.
type Capability string

const (
	CapabilityInfantCertified Capability = "infant_certified"
	CapabilityToddlerTrained  Capability = "toddler_trained"
	CapabilitySpecialNeeds    Capability = "special_needs"
)

// Represents a driver employed by the facility.
type Driver struct {
	ID           string
	Name         string
	Capabilities []Capability
}

// HasCapability reports whether the driver holds the given certification.
func (d *Driver) HasCapability(c Capability) bool {
	for _, have := range d.Capabilities {
		if have == c {
			return true
		}
	}
	return false
}

// HasAllCapabilities reports whether the driver holds every listed certification.
func (d *Driver) HasAllCapabilities(cs []Capability) bool {
	for _, c := range cs {
		if !d.HasCapability(c) {
			return false
		}
	}
	return true
}
