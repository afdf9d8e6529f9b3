package order

import "testing"

func TestSnapshotIsolatesItems(t *testing.T) {
	items := []string{"large pepperoni pizza", "garlic knots"}
	ctx := Context{Business: "Zini's", Items: items, Type: TypePickup}

	snapshot := ctx.Snapshot()
	items[0] = "mutated"

	if snapshot.Items[0] != "large pepperoni pizza" {
		t.Fatalf("snapshot observed caller mutation: %q", snapshot.Items[0])
	}
}

func TestIsDelivery(t *testing.T) {
	if (Context{Type: TypePickup}).IsDelivery() {
		t.Fatal("pickup order reported as delivery")
	}
	if !(Context{Type: TypeDelivery}).IsDelivery() {
		t.Fatal("delivery order not reported as delivery")
	}
}

func TestStoreCreateGetUpdate(t *testing.T) {
	store := NewStore()

	tracked := store.Create(Context{Business: "Zini's"}, "+15551230000")
	if tracked.ID == "" {
		t.Fatal("expected generated order id")
	}
	if tracked.Status != StatusDialing {
		t.Fatalf("expected initial status dialing, got %q", tracked.Status)
	}

	if ok := store.Update(tracked.ID, func(o *Tracked) {
		o.Status = StatusInConversation
		o.CallUUID = "call-1"
	}); !ok {
		t.Fatal("update of known order failed")
	}

	got, ok := store.Get(tracked.ID)
	if !ok {
		t.Fatal("known order not found")
	}
	if got.Status != StatusInConversation || got.CallUUID != "call-1" {
		t.Fatalf("update not applied: %+v", got)
	}

	if _, ok := store.Get("missing"); ok {
		t.Fatal("unknown order reported as found")
	}
	if ok := store.Update("missing", func(*Tracked) {}); ok {
		t.Fatal("update of unknown order reported success")
	}
}
