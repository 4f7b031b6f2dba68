package genapi

// AccessModeOf reports the effective access mode of a node: the kind's
// intrinsic mode intersected with any ImposedAccessMode, downgraded to
// NA when the node is unimplemented or unavailable.
func (ev *Eval) AccessModeOf(id NodeID) (AccessMode, error) {
	data, err := ev.node(id)
	if err != nil {
		return AccessNA, err
	}

	var intrinsic AccessMode
	switch n := data.(type) {
	case *RegisterNode:
		intrinsic = n.Reg.AccessMode
	case *IntRegNode:
		intrinsic = n.Reg.AccessMode
	case *MaskedIntRegNode:
		intrinsic = n.Reg.AccessMode
	case *FloatRegNode:
		intrinsic = n.Reg.AccessMode
	case *StringRegNode:
		intrinsic = n.Reg.AccessMode
	case *SwissKnifeNode, *IntSwissKnifeNode:
		intrinsic = AccessRO
	case *CategoryNode, *PlainNode:
		intrinsic = AccessRO
	default:
		intrinsic = AccessRW
	}

	mode := data.Elem().EffectiveAccess(intrinsic)

	impl, err := data.Elem().IsImplemented(ev)
	if err != nil {
		return AccessNA, err
	}
	avail, err := data.Elem().IsAvailable(ev)
	if err != nil {
		return AccessNA, err
	}
	if !impl || !avail {
		return AccessNA, nil
	}
	return mode, nil
}
