package params

import "testing"

func TestAncestorsOrderedRootFirst(t *testing.T) {
	chain := Berlin.Ancestors()
	if chain[0] != Frontier {
		t.Fatalf("ancestors should start at the root fork, got %s", chain[0].Name)
	}
	if chain[len(chain)-1] != Berlin {
		t.Fatalf("ancestors should end at the queried fork, got %s", chain[len(chain)-1].Name)
	}
	for i := 1; i < len(chain); i++ {
		if chain[i].Base != chain[i-1] {
			t.Fatalf("ancestors chain broken at index %d", i)
		}
	}
}

func TestAtLeast(t *testing.T) {
	if !London.AtLeast(Berlin) {
		t.Fatalf("London should be at least Berlin")
	}
	if Berlin.AtLeast(London) {
		t.Fatalf("Berlin should not be at least London")
	}
	if !Cancun.AtLeast(Cancun) {
		t.Fatalf("a fork should be at least itself")
	}
}

func TestFlagsInheritForward(t *testing.T) {
	if !Prague.Flags.HasDelegateCall {
		t.Fatalf("Prague should inherit HasDelegateCall from Homestead")
	}
	if !Prague.Flags.HasAccessLists {
		t.Fatalf("Prague should inherit HasAccessLists from Berlin")
	}
	if Frontier.Flags.HasDelegateCall {
		t.Fatalf("Frontier should not have DELEGATECALL")
	}
}

func TestGasScheduleInheritsAndOverrides(t *testing.T) {
	if Frontier.Gas.SloadGas != 50 {
		t.Fatalf("Frontier SLOAD gas should be 50, got %d", Frontier.Gas.SloadGas)
	}
	if TangerineWhistle.Gas.SloadGas != 200 {
		t.Fatalf("TangerineWhistle SLOAD gas should be 200, got %d", TangerineWhistle.Gas.SloadGas)
	}
	if Istanbul.Gas.SloadGas != 800 {
		t.Fatalf("Istanbul SLOAD gas should be 800, got %d", Istanbul.Gas.SloadGas)
	}
	// Berlin zeroes the flat SLOAD cost in favor of cold/warm accounting.
	if Berlin.Gas.SloadGas != 0 {
		t.Fatalf("Berlin should zero the flat SLOAD gas, got %d", Berlin.Gas.SloadGas)
	}
	if Berlin.Gas.ColdSloadCostEIP2929 != 2100 {
		t.Fatalf("Berlin cold SLOAD cost should be 2100, got %d", Berlin.Gas.ColdSloadCostEIP2929)
	}
}

func TestRefundScheduleChangesAtLondon(t *testing.T) {
	if Berlin.Gas.SelfdestructRefund != 24000 {
		t.Fatalf("pre-London SELFDESTRUCT refund should be 24000")
	}
	if London.Gas.SelfdestructRefund != 0 {
		t.Fatalf("London should remove the SELFDESTRUCT refund")
	}
	if Berlin.Gas.MaxRefundQuotient != 2 {
		t.Fatalf("pre-London refund quotient should be 2")
	}
	if London.Gas.MaxRefundQuotient != 5 {
		t.Fatalf("London refund quotient should be 5")
	}
}

func TestByNameAndAliases(t *testing.T) {
	if ByName("Cancun") != Cancun {
		t.Fatalf("ByName(Cancun) mismatch")
	}
	if ByName("DAOFork") != Homestead {
		t.Fatalf("DAOFork should alias Homestead")
	}
	if ByName("nonexistent-fork") != nil {
		t.Fatalf("unknown fork name should return nil")
	}
}
