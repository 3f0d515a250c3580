package dom

type MutationType string

const (
	ChildListMutation     MutationType = "childList"
	CharacterDataMutation MutationType = "characterData"
)

// MutationRecord describes one tree edit.
// https://dom.whatwg.org/#interface-mutationrecord
type MutationRecord struct {
	Type         MutationType
	Target       *Node
	AddedNodes   NodeList
	RemovedNodes NodeList
	OldValue     string
}

// MutationListener is called synchronously after each edit of a document
// it is registered on. It may mutate the tree.
type MutationListener func(rec *MutationRecord)

type registeredListener struct {
	id int
	fn MutationListener
}

// AddMutationListener registers fn and returns a function that removes it.
func (d *Document) AddMutationListener(fn MutationListener) (remove func()) {
	d.nextID++
	id := d.nextID
	d.listeners = append(d.listeners, registeredListener{id: id, fn: fn})
	return func() {
		for i, l := range d.listeners {
			if l.id == id {
				d.listeners = append(d.listeners[:i], d.listeners[i+1:]...)
				return
			}
		}
	}
}

func (n *Node) dispatchMutation(rec *MutationRecord) {
	doc := n.ownerDocumentOrSelf()
	if doc == nil || doc.Document == nil || len(doc.Document.listeners) == 0 {
		return
	}
	listeners := make([]registeredListener, len(doc.Document.listeners))
	copy(listeners, doc.Document.listeners)
	for _, l := range listeners {
		l.fn(rec)
	}
}

func (n *Node) notifyChildList(added, removed NodeList) {
	n.dispatchMutation(&MutationRecord{
		Type:         ChildListMutation,
		Target:       n,
		AddedNodes:   added,
		RemovedNodes: removed,
	})
}

func (n *Node) notifyCharacterData(oldValue string) {
	n.dispatchMutation(&MutationRecord{
		Type:     CharacterDataMutation,
		Target:   n,
		OldValue: oldValue,
	})
}
