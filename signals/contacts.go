package signals

// Direction of a DirectedMessage relative to the mailbox owner.
type Direction string

const (
	Inbound  Direction = "inbound"
	Outbound Direction = "outbound"
)

// DirectedMessage is a Message attributed to a single counterpart. The
// embedded Message is an independent copy, never shared between contacts.
type DirectedMessage struct {
	Message
	Direction   Direction
	Counterpart string
}

// ContactMessages is one counterpart's directed messages in scan order.
type ContactMessages struct {
	Address  string
	Messages []DirectedMessage
}

// GroupByContact partitions messages into per-contact streams.
//
// A message sent by the owner is outbound and attributed to the first
// recipient that is present and not the owner; when no recipient qualifies
// the message is dropped from grouping. Every other message is inbound and
// attributed to its sender address, including the empty address, so
// sender-less messages pool under one "" contact rather than vanishing.
//
// Contacts appear in first-seen order; messages keep scan order. Nothing is
// sorted chronologically yet.
func GroupByContact(msgs []Message, owner string) []ContactMessages {
	byAddr := make(map[string]int)
	var groups []ContactMessages

	add := func(addr string, dm DirectedMessage) {
		i, ok := byAddr[addr]
		if !ok {
			i = len(groups)
			byAddr[addr] = i
			groups = append(groups, ContactMessages{Address: addr})
		}
		groups[i].Messages = append(groups[i].Messages, dm)
	}

	for _, m := range msgs {
		if owner != "" && m.SenderAddress == owner {
			for _, r := range m.Recipients {
				if r == "" || r == owner {
					continue
				}
				add(r, DirectedMessage{Message: m, Direction: Outbound, Counterpart: r})
				break
			}
			continue
		}
		add(m.SenderAddress, DirectedMessage{Message: m, Direction: Inbound, Counterpart: m.SenderAddress})
	}
	return groups
}

// Contact is a counterpart with at least one multi-message thread.
type Contact struct {
	Address      string
	DisplayName  string
	MessageCount int
	ThreadCount  int
	Threads      []Thread
}

// BuildContact assembles a Contact from one counterpart's messages, or
// returns false when no subject group survives the two-message minimum.
func BuildContact(cm ContactMessages, limits Limits) (Contact, bool) {
	threads, total := BuildThreads(cm.Messages, limits)
	if len(threads) == 0 {
		return Contact{}, false
	}

	name := ""
	if len(cm.Messages) > 0 && cm.Messages[0].Direction == Inbound {
		name = cm.Messages[0].SenderName
	}

	return Contact{
		Address:      cm.Address,
		DisplayName:  name,
		MessageCount: len(cm.Messages),
		ThreadCount:  total,
		Threads:      threads,
	}, true
}
