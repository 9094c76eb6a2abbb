package order

// DomainElements maps observer name to label to domain-element id. Ids are
// only guaranteed to be stable within this module.
type DomainElements map[string]map[string]string

// DefaultDomainElements returns the built-in id table.
func DefaultDomainElements() DomainElements {
	sov := map[string]string{
		"SOV": "8101", "SVO": "8102", "VSO": "8103",
		"VOS": "8104", "OVS": "8105", "OSV": "8106",
		NoDominantOrder: "8107",
	}
	eap := map[string]string{NoDominantOrder: sov[NoDominantOrder]}
	generic := NewTransitiveObserver(GenericAlphabet).Labels()
	for i, label := range NewTransitiveObserver(SubjectObjectAlphabet).Labels() {
		eap[generic[i]] = sov[label]
	}
	return DomainElements{
		NameIntransitive: {
			"ae_": "8201", "ea_": "8202", NoDominantOrder: "8203",
		},
		NameTransitive:    eap,
		NameSubjectObject: sov,
		NameAdjectiveNoun: {
			AdjectiveNoun: "8701", NounAdjective: "8702", NoDominantOrder: "8703",
		},
	}
}

// Merge overlays other on a copy of d.
func (d DomainElements) Merge(other DomainElements) DomainElements {
	out := DomainElements{}
	for obs, labels := range d {
		out[obs] = map[string]string{}
		for l, id := range labels {
			out[obs][l] = id
		}
	}
	for obs, labels := range other {
		if out[obs] == nil {
			out[obs] = map[string]string{}
		}
		for l, id := range labels {
			out[obs][l] = id
		}
	}
	return out
}
