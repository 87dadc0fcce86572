package signals

// IdentifyOwner infers which address belongs to the mailbox owner: the
// address that appears most often as a sender. Returns "" when no message
// carries a sender address; callers then treat every message as inbound.
//
// Ties are broken by map iteration order. A true tie means two addresses
// authored exactly as many messages, which is rare enough in a personal
// mailbox that the ambiguity is harmless.
func IdentifyOwner(msgs []Message) string {
	counts := make(map[string]int)
	for _, m := range msgs {
		if m.SenderAddress != "" {
			counts[m.SenderAddress]++
		}
	}

	owner := ""
	best := 0
	for addr, n := range counts {
		if n > best {
			owner = addr
			best = n
		}
	}
	return owner
}
