// Package memory provides the in-process entity store shared by every
// request pipeline of a client.
package memory

import (
	"sort"
	"sync"

	"soapcore/pkg/domain"
)

type (
	// User aliases domain.User for store operations.
	User = domain.User
	// Property aliases domain.Property.
	Property = domain.Property
	// Hub aliases domain.Hub.
	Hub = domain.Hub
	// Pickup aliases domain.Pickup.
	Pickup = domain.Pickup
	// PickupCarton aliases domain.PickupCarton.
	PickupCarton = domain.PickupCarton
	// HospitalityContract aliases domain.HospitalityContract.
	HospitalityContract = domain.HospitalityContract
	// ProductionReport aliases domain.ProductionReport.
	ProductionReport = domain.ProductionReport
	// ImpactStats aliases domain.ImpactStats.
	ImpactStats = domain.ImpactStats
)

type memoryState struct {
	users       map[string]User
	properties  map[string]Property
	hubs        map[string]Hub
	pickups     map[string]Pickup
	cartons     map[string]PickupCarton
	contracts   map[string]HospitalityContract
	reports     map[string]ProductionReport
	sessionUser *User
}

// Snapshot captures a point-in-time clone of the store state.
type Snapshot struct {
	Users       map[string]User                `json:"users"`
	Properties  map[string]Property            `json:"properties"`
	Hubs        map[string]Hub                 `json:"hubs"`
	Pickups     map[string]Pickup              `json:"pickups"`
	Cartons     map[string]PickupCarton        `json:"cartons"`
	Contracts   map[string]HospitalityContract `json:"contracts"`
	Reports     map[string]ProductionReport    `json:"reports"`
	SessionUser *User                          `json:"session_user,omitempty"`
}

func newMemoryState() memoryState {
	return memoryState{
		users:      make(map[string]User),
		properties: make(map[string]Property),
		hubs:       make(map[string]Hub),
		pickups:    make(map[string]Pickup),
		cartons:    make(map[string]PickupCarton),
		contracts:  make(map[string]HospitalityContract),
		reports:    make(map[string]ProductionReport),
	}
}

func snapshotFromMemoryState(state memoryState) Snapshot {
	s := Snapshot{
		Users:      cloneMap(state.users, cloneUser),
		Properties: cloneMap(state.properties, cloneProperty),
		Hubs:       cloneMap(state.hubs, cloneHub),
		Pickups:    cloneMap(state.pickups, clonePickup),
		Cartons:    cloneMap(state.cartons, identity[PickupCarton]),
		Contracts:  cloneMap(state.contracts, identity[HospitalityContract]),
		Reports:    cloneMap(state.reports, cloneReport),
	}
	if state.sessionUser != nil {
		u := cloneUser(*state.sessionUser)
		s.SessionUser = &u
	}
	return s
}

func memoryStateFromSnapshot(s Snapshot) memoryState {
	state := memoryState{
		users:      cloneMap(s.Users, cloneUser),
		properties: cloneMap(s.Properties, cloneProperty),
		hubs:       cloneMap(s.Hubs, cloneHub),
		pickups:    cloneMap(s.Pickups, clonePickup),
		cartons:    cloneMap(s.Cartons, identity[PickupCarton]),
		contracts:  cloneMap(s.Contracts, identity[HospitalityContract]),
		reports:    cloneMap(s.Reports, cloneReport),
	}
	if s.SessionUser != nil {
		u := cloneUser(*s.SessionUser)
		state.sessionUser = &u
	}
	return state
}

// cloneMap copies m, never returning nil so imported snapshots with missing
// buckets still yield writable maps.
func cloneMap[T any](m map[string]T, clone func(T) T) map[string]T {
	out := make(map[string]T, len(m))
	for k, v := range m {
		out[k] = clone(v)
	}
	return out
}

func identity[T any](v T) T { return v }

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	return append([]string(nil), in...)
}

func cloneAddress(a *domain.Address) *domain.Address {
	if a == nil {
		return nil
	}
	cp := *a
	return &cp
}

func cloneCoordinates(c *domain.Coordinates) *domain.Coordinates {
	if c == nil {
		return nil
	}
	cp := *c
	return &cp
}

func cloneUser(u User) User {
	cp := u
	cp.Address = cloneAddress(u.Address)
	cp.PropertyIDs = cloneStrings(u.PropertyIDs)
	return cp
}

func cloneProperty(p Property) Property {
	cp := p
	cp.BillingAddress = cloneAddress(p.BillingAddress)
	cp.ShippingAddress = cloneAddress(p.ShippingAddress)
	cp.Coordinates = cloneCoordinates(p.Coordinates)
	cp.PickupIDs = cloneStrings(p.PickupIDs)
	cp.UserIDs = cloneStrings(p.UserIDs)
	if p.Impact != nil {
		impact := *p.Impact
		cp.Impact = &impact
	}
	return cp
}

func cloneHub(h Hub) Hub {
	cp := h
	cp.Address = cloneAddress(h.Address)
	cp.Coordinates = cloneCoordinates(h.Coordinates)
	return cp
}

func clonePickup(p Pickup) Pickup {
	cp := p
	cp.CartonIDs = cloneStrings(p.CartonIDs)
	return cp
}

func cloneReport(r ProductionReport) ProductionReport {
	cp := r
	cp.SoapPhotos = cloneStrings(r.SoapPhotos)
	return cp
}

// sortedValues returns cloned map values ordered by ID.
func sortedValues[T any](m map[string]T, clone func(T) T) []T {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]T, 0, len(keys))
	for _, k := range keys {
		out = append(out, clone(m[k]))
	}
	return out
}

// Store is an identity-keyed cache with one mapping per entity type and a
// session user slot. Every upsert fully replaces the previous value for its ID
// and is visible to readers as soon as it returns.
type Store struct {
	mu    sync.RWMutex
	state memoryState
}

// NewStore constructs an empty store.
func NewStore() *Store {
	return &Store{state: newMemoryState()}
}

// ExportState clones the current store state for external persistence.
func (s *Store) ExportState() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return snapshotFromMemoryState(s.state)
}

// ImportState replaces the store state with the provided snapshot.
func (s *Store) ImportState(snapshot Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = memoryStateFromSnapshot(snapshot)
}

// Counts reports how many entities of each type are cached.
func (s *Store) Counts() map[domain.EntityType]int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return map[domain.EntityType]int{
		domain.EntityUser:                len(s.state.users),
		domain.EntityProperty:            len(s.state.properties),
		domain.EntityHub:                 len(s.state.hubs),
		domain.EntityPickup:              len(s.state.pickups),
		domain.EntityPickupCarton:        len(s.state.cartons),
		domain.EntityHospitalityContract: len(s.state.contracts),
		domain.EntityProductionReport:    len(s.state.reports),
	}
}

// Write helpers ---------------------------------------------------------------

// UpsertUser inserts or replaces a user.
func (s *Store) UpsertUser(u User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.users[u.ID] = cloneUser(u)
}

// UpsertProperty inserts or replaces a property.
func (s *Store) UpsertProperty(p Property) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.properties[p.ID] = cloneProperty(p)
}

// UpsertHub inserts or replaces a hub.
func (s *Store) UpsertHub(h Hub) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.hubs[h.ID] = cloneHub(h)
}

// UpsertPickup inserts or replaces a pickup.
func (s *Store) UpsertPickup(p Pickup) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.pickups[p.ID] = clonePickup(p)
}

// UpsertPickupCarton inserts or replaces a pickup carton.
func (s *Store) UpsertPickupCarton(c PickupCarton) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.cartons[c.ID] = c
}

// UpsertHospitalityContract inserts or replaces a contract.
func (s *Store) UpsertHospitalityContract(c HospitalityContract) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.contracts[c.ID] = c
}

// UpsertProductionReport inserts or replaces a production report.
func (s *Store) UpsertProductionReport(r ProductionReport) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.reports[r.ID] = cloneReport(r)
}

// SetSessionUser overwrites the session user slot. The users mapping is not touched.
func (s *Store) SetSessionUser(u User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := cloneUser(u)
	s.state.sessionUser = &cp
}

// SetPropertyImpact attaches impact statistics to a cached property in place.
func (s *Store) SetPropertyImpact(propertyID string, stats ImpactStats) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.state.properties[propertyID]
	if !ok {
		return domain.ErrNotFound{Entity: domain.EntityProperty, ID: propertyID}
	}
	p.Impact = &stats
	s.state.properties[propertyID] = p
	return nil
}

// Read helpers ---------------------------------------------------------------

// SessionUser returns the session user, if any.
func (s *Store) SessionUser() (User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.state.sessionUser == nil {
		return User{}, false
	}
	return cloneUser(*s.state.sessionUser), true
}

// GetUser retrieves a user by ID.
func (s *Store) GetUser(id string) (User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.state.users[id]
	if !ok {
		return User{}, false
	}
	return cloneUser(u), true
}

// GetProperty retrieves a property by ID.
func (s *Store) GetProperty(id string) (Property, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.state.properties[id]
	if !ok {
		return Property{}, false
	}
	return cloneProperty(p), true
}

// GetHub retrieves a hub by ID.
func (s *Store) GetHub(id string) (Hub, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	h, ok := s.state.hubs[id]
	if !ok {
		return Hub{}, false
	}
	return cloneHub(h), true
}

// GetPickup retrieves a pickup by ID.
func (s *Store) GetPickup(id string) (Pickup, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.state.pickups[id]
	if !ok {
		return Pickup{}, false
	}
	return clonePickup(p), true
}

// GetPickupCarton retrieves a carton by ID.
func (s *Store) GetPickupCarton(id string) (PickupCarton, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.state.cartons[id]
	return c, ok
}

// GetHospitalityContract retrieves a contract by ID.
func (s *Store) GetHospitalityContract(id string) (HospitalityContract, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.state.contracts[id]
	return c, ok
}

// GetProductionReport retrieves a production report by ID.
func (s *Store) GetProductionReport(id string) (ProductionReport, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.state.reports[id]
	if !ok {
		return ProductionReport{}, false
	}
	return cloneReport(r), true
}

// Lookup retrieves any cached entity by type and ID.
func (s *Store) Lookup(entity domain.EntityType, id string) (any, bool) {
	var (
		v  any
		ok bool
	)
	switch entity {
	case domain.EntityUser:
		v, ok = s.GetUser(id)
	case domain.EntityProperty:
		v, ok = s.GetProperty(id)
	case domain.EntityHub:
		v, ok = s.GetHub(id)
	case domain.EntityPickup:
		v, ok = s.GetPickup(id)
	case domain.EntityPickupCarton:
		v, ok = s.GetPickupCarton(id)
	case domain.EntityHospitalityContract:
		v, ok = s.GetHospitalityContract(id)
	case domain.EntityProductionReport:
		v, ok = s.GetProductionReport(id)
	}
	if !ok {
		return nil, false
	}
	return v, true
}

// ListUsers returns all cached users ordered by ID.
func (s *Store) ListUsers() []User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sortedValues(s.state.users, cloneUser)
}

// ListProperties returns all cached properties ordered by ID.
func (s *Store) ListProperties() []Property {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sortedValues(s.state.properties, cloneProperty)
}

// ListHubs returns all cached hubs ordered by ID.
func (s *Store) ListHubs() []Hub {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sortedValues(s.state.hubs, cloneHub)
}

// ListPickups returns all cached pickups ordered by ID.
func (s *Store) ListPickups() []Pickup {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sortedValues(s.state.pickups, clonePickup)
}

// ListPickupCartons returns all cached cartons ordered by ID.
func (s *Store) ListPickupCartons() []PickupCarton {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sortedValues(s.state.cartons, identity[PickupCarton])
}

// ListHospitalityContracts returns all cached contracts ordered by ID.
func (s *Store) ListHospitalityContracts() []HospitalityContract {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sortedValues(s.state.contracts, identity[HospitalityContract])
}

// ListProductionReports returns all cached production reports ordered by ID.
func (s *Store) ListProductionReports() []ProductionReport {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sortedValues(s.state.reports, cloneReport)
}

// Reference resolution --------------------------------------------------------

// PropertyHub resolves the hub referenced by a cached property.
func (s *Store) PropertyHub(propertyID string) (Hub, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.state.properties[propertyID]
	if !ok || p.HubID == "" {
		return Hub{}, false
	}
	h, ok := s.state.hubs[p.HubID]
	if !ok {
		return Hub{}, false
	}
	return cloneHub(h), true
}

// PropertyContract resolves the contract referenced by a cached property.
func (s *Store) PropertyContract(propertyID string) (HospitalityContract, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.state.properties[propertyID]
	if !ok || p.ContractID == "" {
		return HospitalityContract{}, false
	}
	c, ok := s.state.contracts[p.ContractID]
	return c, ok
}

// PropertyPickups resolves the cached pickups referenced by a property.
// References that are not cached are skipped.
func (s *Store) PropertyPickups(propertyID string) []Pickup {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.state.properties[propertyID]
	if !ok {
		return nil
	}
	return resolve(p.PickupIDs, s.state.pickups, clonePickup)
}

// PickupCartons resolves the cached cartons referenced by a pickup.
func (s *Store) PickupCartons(pickupID string) []PickupCarton {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.state.pickups[pickupID]
	if !ok {
		return nil
	}
	return resolve(p.CartonIDs, s.state.cartons, identity[PickupCarton])
}

// UserProperties resolves the cached properties referenced by a user.
func (s *Store) UserProperties(userID string) []Property {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.state.users[userID]
	if !ok {
		return nil
	}
	return resolve(u.PropertyIDs, s.state.properties, cloneProperty)
}

// HubProductionReports returns the cached reports filed by a hub, ordered by ID.
func (s *Store) HubProductionReports(hubID string) []ProductionReport {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []ProductionReport
	for _, r := range sortedValues(s.state.reports, identity[ProductionReport]) {
		if r.HubID == hubID {
			out = append(out, cloneReport(r))
		}
	}
	return out
}

func resolve[T any](ids []string, m map[string]T, clone func(T) T) []T {
	var out []T
	for _, id := range ids {
		if v, ok := m[id]; ok {
			out = append(out, clone(v))
		}
	}
	return out
}
