package catalog

import "github.com/spinode/spinode/internal/meta"

// Demo returns a small catalog for trying the builder without a model import.
func Demo() []Class {
	return []Class{
		{
			Name:     "vlanCktEp",
			Module:   "fv",
			Label:    "VLAN Circuit EPG",
			Category: "fv",
			Descr:    "Holds the EPG and its application profile in a VLAN context.",
			Props: []Prop{
				{Name: "epgDn", Descr: "EPG distinguished name"},
				{Name: "encap", Descr: "Dot1q encapsulation (vlan-<id>)"},
			},
			Relations: []Relation{
				{Type: RelParent, Target: "l2BD"},
				{Type: RelSource, Target: "fvAEPg"},
			},
		},
		{
			Name:     "l3extOut",
			Module:   "l3ext",
			Label:    "L3Out",
			Category: "l3ext",
			RnFormat: "out-{name}",
			Descr:    "External routing policy; nameAlias can carry mapping IDs.",
			Props: []Prop{
				{Name: "name", Descr: "Primary name", IsNaming: true},
				{Name: "nameAlias", Descr: "Alias; suitable for regex search"},
				{Name: "descr", Descr: "Description"},
			},
			Relations: []Relation{
				{Type: RelParent, Target: "fvTenant"},
				{Type: RelChild, Target: "l3extInstP"},
				{Type: RelChild, Target: "l3extLNodeP"},
			},
		},
		{
			Name:     "bgpPeerEntry",
			Module:   "bgp",
			Label:    "BGP Peer Entry",
			Category: "bgp",
			Descr:    "BGP neighbor operational state, last flap time and dn.",
			Props: []Prop{
				{Name: "dn", Descr: "Distinguished name; interface and tenant context"},
				{Name: "operSt", Descr: "Operational state", Constants: []meta.Constant{
					{Name: "idle", Label: "Idle", Value: "1"},
					{Name: "connect", Label: "Connect", Value: "2"},
					{Name: "active", Label: "Active", Value: "3"},
					{Name: "established", Label: "Established", Value: "6"},
				}},
				{Name: "lastFlapTs", Descr: "Last flap timestamp"},
			},
			Relations: []Relation{
				{Type: RelParent, Target: "bgpPeer"},
			},
		},
	}
}
