package inventory

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	contractx "github.com/tanpawarit/restaurant-voice-agent/agent/contract"
	metricsx "github.com/tanpawarit/restaurant-voice-agent/agent/metrics"
)

type memoryRepository struct {
	mu      sync.Mutex
	inv     *Inventory
	loadErr error
	saveErr error
	saves   int
}

func (m *memoryRepository) Load(context.Context) (*Inventory, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	return m.inv.Clone(), nil
}

func (m *memoryRepository) Save(_ context.Context, inv *Inventory) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saves++
	if m.saveErr != nil {
		return m.saveErr
	}
	m.inv = inv.Clone()
	return nil
}

func TestOpenFallsBackToEmptyOnLoadError(t *testing.T) {
	t.Parallel()

	store := Open(context.Background(), &memoryRepository{loadErr: errors.New("corrupt")})
	if store.Available() {
		t.Fatal("expected empty store to be unavailable")
	}
	_, err := store.Check(Order{"pizza": 1})
	if !errors.Is(err, contractx.ErrInventoryUnavailable) {
		t.Fatalf("expected ErrInventoryUnavailable, got %v", err)
	}
}

func TestCommitDeductsAndPersists(t *testing.T) {
	t.Parallel()

	repo := &memoryRepository{inv: mustInventory(t, Entry{Key: "pizza", Item: MenuItem{Name: "Pizza", Price: 10, Quantity: 10}})}
	store := Open(context.Background(), repo)

	res, err := store.Commit(context.Background(), Order{"pizza": 3})
	if err != nil {
		t.Fatalf("Commit() error = %v", err)
	}
	if res.PersistErr != nil {
		t.Fatalf("unexpected persist error: %v", res.PersistErr)
	}
	if it, _ := repo.inv.Item("pizza"); it.Quantity != 7 {
		t.Fatalf("persisted quantity = %d, want 7", it.Quantity)
	}
}

func TestCommitRejectsShortfallWithoutDeducting(t *testing.T) {
	t.Parallel()

	repo := &memoryRepository{inv: mustInventory(t, Entry{Key: "coffee", Item: MenuItem{Name: "Coffee", Quantity: 1}})}
	store := Open(context.Background(), repo)

	_, err := store.Commit(context.Background(), Order{"coffee": 2})
	if !errors.Is(err, contractx.ErrInsufficientStock) {
		t.Fatalf("expected ErrInsufficientStock, got %v", err)
	}
	if repo.saves != 0 {
		t.Fatalf("expected no persistence, got %d saves", repo.saves)
	}
	if it, _ := store.Snapshot().Item("coffee"); it.Quantity != 1 {
		t.Fatalf("quantity changed to %d", it.Quantity)
	}
}

func TestCommitKeepsDeductionWhenPersistFails(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	rec := metricsx.NewRecorder(reg)
	repo := &memoryRepository{
		inv:     mustInventory(t, Entry{Key: "pizza", Item: MenuItem{Name: "Pizza", Quantity: 10}}),
		saveErr: errors.New("disk full"),
	}
	store := Open(context.Background(), repo, WithRecorder(rec))

	res, err := store.Commit(context.Background(), Order{"pizza": 3})
	if err != nil {
		t.Fatalf("Commit() error = %v", err)
	}
	if res.PersistErr == nil {
		t.Fatal("expected persist error to be reported")
	}
	if it, _ := store.Snapshot().Item("pizza"); it.Quantity != 7 {
		t.Fatalf("in-memory quantity = %d, want 7", it.Quantity)
	}
	expected := `
# HELP restaurant_inventory_persists_total Inventory persistence attempts by status
# TYPE restaurant_inventory_persists_total counter
restaurant_inventory_persists_total{status="error"} 1
`
	if err := testutil.GatherAndCompare(reg, strings.NewReader(expected), "restaurant_inventory_persists_total"); err != nil {
		t.Fatalf("unexpected persist metrics: %v", err)
	}
}

func TestConcurrentCommitsNeverOversell(t *testing.T) {
	t.Parallel()

	repo := &memoryRepository{inv: mustInventory(t, Entry{Key: "pizza", Item: MenuItem{Name: "Pizza", Quantity: 5}})}
	store := Open(context.Background(), repo)

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		success int
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := store.Check(Order{"pizza": 1}); err != nil {
				return
			}
			if _, err := store.Commit(context.Background(), Order{"pizza": 1}); err == nil {
				mu.Lock()
				success++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if success != 5 {
		t.Fatalf("successful commits = %d, want 5", success)
	}
	if it, _ := store.Snapshot().Item("pizza"); it.Quantity != 0 {
		t.Fatalf("quantity = %d, want 0", it.Quantity)
	}
}
