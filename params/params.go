// Package params defines the hardfork specification DAG: each named fork
// is a node carrying a pointer to its base fork plus the deltas applied on
// top of it, rather than a flat table of independent boolean switches.
// Each fork's Flags and Gas are computed from its base's values when the
// package is initialised, so package vm reads the already-resolved values
// off a single Spec rather than walking the chain itself.
package params

import "github.com/eth2030/evmcore/types"

// FeatureFlags records which opcode-level behaviors are active. A fork's
// FeatureFlags value is always derived from its Base's value by one of the
// update* functions below, never written out in full by hand, so a flag
// introduced at one fork is automatically inherited by every descendant.
type FeatureFlags struct {
	HasDelegateCall      bool // Homestead: DELEGATECALL
	HasRevert            bool // Byzantium: REVERT, RETURNDATASIZE/COPY, STATICCALL
	HasStaticCall        bool // Byzantium: STATICCALL
	HasBitwiseShifts     bool // Constantinople: SHL/SHR/SAR
	HasExtCodeHash       bool // Constantinople: EXTCODEHASH
	HasCreate2           bool // Constantinople: CREATE2
	HasChainID           bool // Istanbul: CHAINID
	HasSelfBalance       bool // Istanbul: SELFBALANCE
	HasSstoreNetGasEIP2200 bool // Istanbul: SSTORE net-metering with sentry gas
	HasAccessLists       bool // Berlin: EIP-2929/2930 warm/cold access tracking
	HasBaseFee           bool // London: BASEFEE
	HasSelfdestructRefundRemoved bool // London: EIP-3529 removed the SELFDESTRUCT refund
	HasPrevRandao        bool // Paris: DIFFICULTY redefined as PREVRANDAO
	HasPush0             bool // Shanghai: PUSH0
	HasWarmCoinbase      bool // Shanghai: EIP-3651, the coinbase starts warm
	HasMaxInitcodeSize   bool // Shanghai: EIP-3860 initcode size limit + extra gas
	HasTransientStorage  bool // Cancun: TLOAD/TSTORE
	HasMCopy             bool // Cancun: MCOPY
	HasBlobOpcodes       bool // Cancun: BLOBHASH/BLOBBASEFEE
	HasEIP7702           bool // Prague: EIP-7702 set-code delegation
}

// GasSchedule records the numeric gas parameters that vary by fork. Like
// FeatureFlags, each fork's schedule is derived from its Base's schedule.
type GasSchedule struct {
	SloadGas                     uint64 // cold/flat SLOAD cost pre-Berlin
	BalanceGas                   uint64 // flat BALANCE cost pre-Berlin
	ExtcodeSizeGas                uint64
	ExtcodeCopyBaseGas            uint64
	ExtcodeHashGas                uint64
	CallGasEIP150                uint64 // base cost of CALL/CALLCODE/DELEGATECALL/STATICCALL
	SelfdestructGas               uint64 // base SELFDESTRUCT cost (0 before Tangerine Whistle)

	ColdSloadCostEIP2929         uint64 // Berlin+: first SLOAD of a slot this transaction
	WarmStorageReadCostEIP2929   uint64 // Berlin+: subsequent SLOAD/CALL/BALANCE/EXTCODE* of a warm target
	ColdAccountAccessCostEIP2929 uint64 // Berlin+: first touch of an address this transaction

	SstoreSetGas               uint64 // writing a zero slot to non-zero
	SstoreResetGas             uint64 // writing a non-zero slot to a different value
	SstoreSentryGasEIP2200     uint64 // Istanbul+: minimum gas left required to SSTORE at all
	SstoreClearsScheduleRefund uint64 // refund for clearing a slot to zero

	SelfdestructRefund uint64 // refund for a first-time SELFDESTRUCT in this transaction (0 once removed)
	MaxRefundQuotient  uint64 // total refund capped at gasUsed/MaxRefundQuotient

	CallStipend uint64 // extra gas the caller grants a value-transferring CALL

	MaxCodeSize     uint64 // 0 means unlimited
	MaxInitcodeSize uint64 // 0 means unlimited
	MaxCallDepth    uint64
}

// Spec is one node of the hardfork DAG. Base is nil only for the root
// (Frontier). Order is a convenience ordinal for "at least as new as"
// comparisons; it does not participate in flag/gas resolution, which is
// always driven by the Base chain.
type Spec struct {
	Name  string
	Base  *Spec
	Order int
	Flags FeatureFlags
	Gas   GasSchedule
}

// AtLeast reports whether s is the same fork as other or a descendant of
// it in the DAG.
func (s *Spec) AtLeast(other *Spec) bool {
	return s.Order >= other.Order
}

// Ancestors returns the chain from the root fork to s, inclusive, root
// first.
func (s *Spec) Ancestors() []*Spec {
	var chain []*Spec
	for n := s; n != nil; n = n.Base {
		chain = append(chain, n)
	}
	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}
	return chain
}

func updateHomestead(f FeatureFlags) FeatureFlags {
	f.HasDelegateCall = true
	return f
}

func updateByzantium(f FeatureFlags) FeatureFlags {
	f.HasRevert = true
	f.HasStaticCall = true
	return f
}

func updateConstantinople(f FeatureFlags) FeatureFlags {
	f.HasBitwiseShifts = true
	f.HasExtCodeHash = true
	f.HasCreate2 = true
	return f
}

func updateIstanbul(f FeatureFlags) FeatureFlags {
	f.HasChainID = true
	f.HasSelfBalance = true
	f.HasSstoreNetGasEIP2200 = true
	return f
}

func updateBerlin(f FeatureFlags) FeatureFlags {
	f.HasAccessLists = true
	return f
}

func updateLondon(f FeatureFlags) FeatureFlags {
	f.HasBaseFee = true
	f.HasSelfdestructRefundRemoved = true
	return f
}

func updateParis(f FeatureFlags) FeatureFlags {
	f.HasPrevRandao = true
	return f
}

func updateShanghai(f FeatureFlags) FeatureFlags {
	f.HasPush0 = true
	f.HasWarmCoinbase = true
	f.HasMaxInitcodeSize = true
	return f
}

func updateCancun(f FeatureFlags) FeatureFlags {
	f.HasTransientStorage = true
	f.HasMCopy = true
	f.HasBlobOpcodes = true
	return f
}

func updatePrague(f FeatureFlags) FeatureFlags {
	f.HasEIP7702 = true
	return f
}

func gasTangerineWhistle(g GasSchedule) GasSchedule {
	g.SloadGas = 200
	g.BalanceGas = 400
	g.ExtcodeSizeGas = 700
	g.ExtcodeCopyBaseGas = 700
	g.CallGasEIP150 = 700
	g.SelfdestructGas = 5000
	return g
}

func gasIstanbul(g GasSchedule) GasSchedule {
	g.SloadGas = 800
	g.BalanceGas = 700
	g.ExtcodeHashGas = 700
	g.SstoreSentryGasEIP2200 = 2300
	return g
}

func gasBerlin(g GasSchedule) GasSchedule {
	g.ColdSloadCostEIP2929 = 2100
	g.WarmStorageReadCostEIP2929 = 100
	g.ColdAccountAccessCostEIP2929 = 2600
	// EIP-2929 folds the cold SLOAD surcharge out of the reset cost.
	g.SstoreResetGas = 5000 - g.ColdSloadCostEIP2929
	// Flat per-opcode costs are superseded by the cold/warm schedule above;
	// zero them so a stale flat constant can never be charged by mistake.
	g.SloadGas = 0
	g.BalanceGas = 0
	g.ExtcodeSizeGas = 0
	g.ExtcodeCopyBaseGas = 0
	g.ExtcodeHashGas = 0
	return g
}

func gasLondon(g GasSchedule) GasSchedule {
	g.SelfdestructRefund = 0
	g.MaxRefundQuotient = 5
	g.SstoreClearsScheduleRefund = 4800
	return g
}

func gasShanghai(g GasSchedule) GasSchedule {
	g.MaxInitcodeSize = 49152
	return g
}

// Frontier is the root of the hardfork DAG.
var Frontier = &Spec{
	Name:  "Frontier",
	Order: 0,
	Flags: FeatureFlags{},
	Gas: GasSchedule{
		SloadGas:                   50,
		BalanceGas:                 20,
		ExtcodeSizeGas:             20,
		ExtcodeCopyBaseGas:         20,
		CallGasEIP150:              40,
		SelfdestructGas:            0,
		SstoreSetGas:               20000,
		SstoreResetGas:             5000,
		SstoreClearsScheduleRefund: 15000,
		SelfdestructRefund:         24000,
		MaxRefundQuotient:          2,
		CallStipend:                2300,
		MaxCallDepth:               1024,
	},
}

// Homestead adds DELEGATECALL (EIP-7) and the CREATE out-of-gas bugfix.
var Homestead = &Spec{
	Name: "Homestead", Base: Frontier, Order: 1,
	Flags: updateHomestead(Frontier.Flags),
	Gas:   Frontier.Gas,
}

// TangerineWhistle is EIP-150: repriced IO-heavy opcodes after the 2016
// denial-of-service attacks.
var TangerineWhistle = &Spec{
	Name: "TangerineWhistle", Base: Homestead, Order: 2,
	Flags: Homestead.Flags,
	Gas:   gasTangerineWhistle(Homestead.Gas),
}

// SpuriousDragon is EIP-158/161: empty-account cleanup and the EIP-170
// max contract code size.
var SpuriousDragon = &Spec{
	Name: "SpuriousDragon", Base: TangerineWhistle, Order: 3,
	Flags: TangerineWhistle.Flags,
	Gas: func() GasSchedule {
		g := TangerineWhistle.Gas
		g.MaxCodeSize = 24576
		return g
	}(),
}

// Byzantium adds REVERT, RETURNDATASIZE/COPY, STATICCALL, and the modexp
// precompile.
var Byzantium = &Spec{
	Name: "Byzantium", Base: SpuriousDragon, Order: 4,
	Flags: updateByzantium(SpuriousDragon.Flags),
	Gas:   SpuriousDragon.Gas,
}

// Constantinople adds SHL/SHR/SAR, EXTCODEHASH, and CREATE2.
var Constantinople = &Spec{
	Name: "Constantinople", Base: Byzantium, Order: 5,
	Flags: updateConstantinople(Byzantium.Flags),
	Gas: func() GasSchedule {
		g := Byzantium.Gas
		g.ExtcodeHashGas = 400
		return g
	}(),
}

// Petersburg removed Constantinople's EIP-1283 net-metered SSTORE (a
// security rollback) without changing any opcode surface; it carries the
// same flags and gas schedule forward.
var Petersburg = &Spec{
	Name: "Petersburg", Base: Constantinople, Order: 6,
	Flags: Constantinople.Flags,
	Gas:   Constantinople.Gas,
}

// Istanbul adds CHAINID, SELFBALANCE, reprices SLOAD/BALANCE/EXTCODEHASH
// (EIP-1884), and reintroduces net-metered SSTORE with a sentry gas
// requirement (EIP-2200).
var Istanbul = &Spec{
	Name: "Istanbul", Base: Petersburg, Order: 7,
	Flags: updateIstanbul(Petersburg.Flags),
	Gas:   gasIstanbul(Petersburg.Gas),
}

// Berlin adds EIP-2929/2930 warm/cold access-list gas accounting and
// EIP-2565 modexp repricing.
var Berlin = &Spec{
	Name: "Berlin", Base: Istanbul, Order: 8,
	Flags: updateBerlin(Istanbul.Flags),
	Gas:   gasBerlin(Istanbul.Gas),
}

// London adds BASEFEE, removes the SELFDESTRUCT refund, and raises the
// refund cap divisor from 2 to 5 (EIP-3529).
var London = &Spec{
	Name: "London", Base: Berlin, Order: 9,
	Flags: updateLondon(Berlin.Flags),
	Gas:   gasLondon(Berlin.Gas),
}

// Paris is the Merge: DIFFICULTY is redefined as PREVRANDAO. No gas or
// opcode surface changes beyond the reinterpretation.
var Paris = &Spec{
	Name: "Paris", Base: London, Order: 10,
	Flags: updateParis(London.Flags),
	Gas:   London.Gas,
}

// Shanghai adds PUSH0 (EIP-3855), a warm COINBASE (EIP-3651), and the
// EIP-3860 initcode size limit.
var Shanghai = &Spec{
	Name: "Shanghai", Base: Paris, Order: 11,
	Flags: updateShanghai(Paris.Flags),
	Gas:   gasShanghai(Paris.Gas),
}

// Cancun adds TLOAD/TSTORE, MCOPY, and the blob-related opcodes
// BLOBHASH/BLOBBASEFEE.
var Cancun = &Spec{
	Name: "Cancun", Base: Shanghai, Order: 12,
	Flags: updateCancun(Shanghai.Flags),
	Gas:   Shanghai.Gas,
}

// Prague adds EIP-7702 set-code delegation.
var Prague = &Spec{
	Name: "Prague", Base: Cancun, Order: 13,
	Flags: updatePrague(Cancun.Flags),
	Gas:   Cancun.Gas,
}

// DAOFork and FrontierThawing are administrative forks with no opcode or
// gas-schedule impact; they alias their effective rule sets.
var (
	FrontierThawing = Frontier
	DAOFork         = Homestead
)

// ByName returns the Spec registered under name, or nil if unknown.
func ByName(name string) *Spec {
	return byName[name]
}

var byName = map[string]*Spec{
	"Frontier":          Frontier,
	"FrontierThawing":   FrontierThawing,
	"Homestead":         Homestead,
	"DAOFork":           DAOFork,
	"TangerineWhistle":  TangerineWhistle,
	"SpuriousDragon":    SpuriousDragon,
	"Byzantium":         Byzantium,
	"Constantinople":    Constantinople,
	"Petersburg":        Petersburg,
	"Istanbul":          Istanbul,
	"Berlin":            Berlin,
	"London":            London,
	"Paris":             Paris,
	"Shanghai":          Shanghai,
	"Cancun":            Cancun,
	"Prague":            Prague,
}

// Latest is the newest fork this module implements; callers that don't
// need fork-specific behavior can use it as a sane default.
var Latest = Prague

// precompileEntry pairs a precompiled contract's address with the fork
// that activates it. Only the address table is kept here: running a
// precompile's actual logic is out of this module's scope, but the
// transaction entry point still needs to know which addresses come
// pre-warmed in the EIP-2929 access list.
type precompileEntry struct {
	addr       types.Address
	activation *Spec
}

func precompileAddress(b byte) types.Address {
	var a types.Address
	a[len(a)-1] = b
	return a
}

// precompileTable lists every precompiled contract address this module
// is aware of, in ascending address order, each tagged with the fork
// that introduced it: 0x01-0x04 at Homestead, 0x05-0x08 at Byzantium
// (the modexp and altbn128 precompiles), 0x09 at Istanbul (blake2f), and
// 0x0a at Cancun (the point-evaluation precompile backing EIP-4844).
var precompileTable = []precompileEntry{
	{precompileAddress(0x01), Homestead}, // ecRecover
	{precompileAddress(0x02), Homestead}, // sha256
	{precompileAddress(0x03), Homestead}, // ripemd160
	{precompileAddress(0x04), Homestead}, // identity
	{precompileAddress(0x05), Byzantium}, // modexp
	{precompileAddress(0x06), Byzantium}, // ecAdd
	{precompileAddress(0x07), Byzantium}, // ecMul
	{precompileAddress(0x08), Byzantium}, // ecPairing
	{precompileAddress(0x09), Istanbul},  // blake2f
	{precompileAddress(0x0a), Cancun},    // pointEvaluation
}

// PrecompileAddresses returns the addresses active under spec, in
// ascending order. It backs the transaction entry point's access-list
// pre-warming (EIP-2929): every precompile address is pre-populated as
// warm regardless of whether the transaction ever touches it.
func PrecompileAddresses(spec *Spec) []types.Address {
	addrs := make([]types.Address, 0, len(precompileTable))
	for _, e := range precompileTable {
		if spec.AtLeast(e.activation) {
			addrs = append(addrs, e.addr)
		}
	}
	return addrs
}
