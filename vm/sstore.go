package vm

import (
	"github.com/eth2030/evmcore/params"
	"github.com/eth2030/evmcore/u256"
)

// warmReadCost is the cost of touching a storage slot that is already
// known-warm (or, pre-Berlin, the flat cost of any SLOAD at all, since
// there was no warm/cold distinction yet).
func warmReadCost(spec *params.Spec) uint64 {
	if spec.Flags.HasAccessLists {
		return spec.Gas.WarmStorageReadCostEIP2929
	}
	return spec.Gas.SloadGas
}

// SstoreSentryOK reports whether an SSTORE is permitted to proceed at
// all. Istanbul's EIP-2200 net-metering forbids SSTORE when 2300 gas or
// less remains, unless the store is a no-op (current == new), to
// guarantee a callee with the standard 2300-gas CALL stipend can never
// use SSTORE to reenter or grief its caller. Pre-Istanbul forks have no
// such restriction.
func SstoreSentryOK(spec *params.Spec, remaining uint64, current, newVal u256.U256) bool {
	if !spec.Flags.HasSstoreNetGasEIP2200 {
		return true
	}
	if current.Eq(newVal) {
		return true
	}
	return remaining > spec.Gas.SstoreSentryGasEIP2200
}

// SstoreGas computes an SSTORE's gas cost and refund delta (refund may be
// negative: a dirty slot changing back toward its original value can
// claw back a refund granted earlier in the same transaction). cold
// indicates whether this is the slot's first touch this transaction
// (pre-Berlin this parameter is ignored, since there was no cold/warm
// concept yet).
//
// Forks fall into two regimes:
//   - pre-Istanbul (Frontier..Petersburg): the flat legacy rule, costed
//     only off (current, new), with no "original value" tracking at all.
//   - Istanbul+ (EIP-2200 net metering): costed off the full
//     (original, current, new) triple, additionally wrapped in Berlin's
//     cold/warm surcharge and London's reduced clear-refund.
func SstoreGas(spec *params.Spec, cold bool, original, current, newVal u256.U256) (gas uint64, refund int64) {
	if !spec.Flags.HasSstoreNetGasEIP2200 {
		return sstoreGasLegacy(spec, current, newVal)
	}
	return sstoreGasNetMetered(spec, cold, original, current, newVal)
}

func sstoreGasLegacy(spec *params.Spec, current, newVal u256.U256) (gas uint64, refund int64) {
	switch {
	case current.IsZero() && !newVal.IsZero():
		return spec.Gas.SstoreSetGas, 0
	case !current.IsZero() && newVal.IsZero():
		return spec.Gas.SstoreResetGas, int64(spec.Gas.SstoreClearsScheduleRefund)
	default:
		return spec.Gas.SstoreResetGas, 0
	}
}

func sstoreGasNetMetered(spec *params.Spec, cold bool, original, current, newVal u256.U256) (gas uint64, refund int64) {
	var coldGas uint64
	if spec.Flags.HasAccessLists && cold {
		coldGas = spec.Gas.ColdSloadCostEIP2929
	}

	if current.Eq(newVal) {
		return warmReadCost(spec) + coldGas, 0
	}

	if original.Eq(current) {
		if original.IsZero() {
			return spec.Gas.SstoreSetGas + coldGas, 0
		}
		gas = spec.Gas.SstoreResetGas + coldGas
		if newVal.IsZero() {
			refund = int64(spec.Gas.SstoreClearsScheduleRefund)
		}
		return gas, refund
	}

	// Dirty slot: this transaction already changed it away from
	// original, so the only cost now is a warm read; every further
	// refund delta corrects for whatever was already granted/charged
	// by the write that made it dirty.
	gas = warmReadCost(spec) + coldGas

	if !original.IsZero() {
		switch {
		case current.IsZero() && !newVal.IsZero():
			refund -= int64(spec.Gas.SstoreClearsScheduleRefund)
		case !current.IsZero() && newVal.IsZero():
			refund += int64(spec.Gas.SstoreClearsScheduleRefund)
		}
	}

	if original.Eq(newVal) {
		if original.IsZero() {
			refund += int64(spec.Gas.SstoreSetGas) - int64(warmReadCost(spec))
		} else {
			refund += int64(spec.Gas.SstoreResetGas) - int64(warmReadCost(spec))
		}
	}

	return gas, refund
}
