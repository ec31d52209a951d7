package resource

import (
	"github.com/lixenwraith/scape/event"
	"github.com/lixenwraith/scape/manager"
	"github.com/rs/zerolog"
)

// ManagerName is the registry name of the resource manager
const ManagerName = "resource"

// Manager binds a discovery pass to the host's load batch
// The tree outlives the manager; unloading only detaches the subscription
type Manager struct {
	tree      *Tree
	discovery *Discovery
	log       zerolog.Logger

	load   *event.Batch[event.LoadArgs]
	sub    event.Subscription
	report Report
	ran    bool
}

// NewManager creates a resource manager populating tree from universe through loader
func NewManager(tree *Tree, universe Universe, loader Loader, log zerolog.Logger) *Manager {
	return &Manager{
		tree:      tree,
		discovery: NewDiscovery(tree, universe, loader, log),
		log:       log.With().Str("component", ManagerName).Logger(),
	}
}

// Name implements manager.Manager
func (m *Manager) Name() string {
	return ManagerName
}

// Init implements manager.Initializer, subscribing discovery to the load batch
func (m *Manager) Init(h manager.Host) error {
	load := h.OnLoad()
	sub, err := load.Subscribe(m.loadAllReferenced)
	if err != nil {
		return err
	}
	m.load = load
	m.sub = sub
	return nil
}

// ExtractDependencies implements manager.Manager
// Loaded resources stay in the tree for the process lifetime
func (m *Manager) ExtractDependencies() error {
	if m.load != nil {
		m.load.Unsubscribe(m.sub)
		m.load = nil
		m.sub = 0
	}
	return nil
}

// Tree returns the dependency tree populated by this manager
func (m *Manager) Tree() *Tree {
	return m.tree
}

// Report returns the result of the last discovery pass and whether one ran
func (m *Manager) Report() (Report, bool) {
	return m.report, m.ran
}

func (m *Manager) loadAllReferenced(src event.Source, args event.LoadArgs) error {
	m.log.Debug().Str("source", src.ID()).Msg(args.Info)

	report, err := m.discovery.Run()
	m.report = report
	m.ran = true
	if err != nil {
		return err
	}

	m.log.Info().
		Int("loaded", report.Loaded).
		Int("linked", report.Linked).
		Int("skipped", len(report.Skipped)).
		Msg("resource discovery complete")
	return nil
}
