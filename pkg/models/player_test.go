package models

import "testing"

func TestPlayerFinances(t *testing.T) {
	profession := Profession{Name: "Maestro", Salary: 3300, Expenses: 2200, Cash: 1100}
	p := NewPlayerState("u1", "Ana", profession)

	if p.LoanLimitFactor != 1.0 {
		t.Errorf("LoanLimitFactor = %v, se esperaba 1.0", p.LoanLimitFactor)
	}
	if p.StartFinances != profession {
		t.Error("no se guardó el respaldo de finanzas iniciales")
	}

	p.PassiveIncome = 700
	if got := p.TotalIncome(); got != 4000 {
		t.Errorf("TotalIncome = %d, se esperaba 4000", got)
	}
	if got := p.NetCashflow(); got != 1800 {
		t.Errorf("NetCashflow = %d, se esperaba 1800", got)
	}
}

func TestPassiveGainOnlyOnFastTrack(t *testing.T) {
	p := &PlayerState{PassiveIncome: 120000, FastTrackBaseline: 100000}

	if got := p.PassiveGain(); got != 0 {
		t.Errorf("PassiveGain = %d en la carrera de la rata, se esperaba 0", got)
	}
	p.IsFastTrack = true
	if got := p.PassiveGain(); got != 20000 {
		t.Errorf("PassiveGain = %d, se esperaba 20000", got)
	}
}

func TestIsEligible(t *testing.T) {
	tests := []struct {
		name       string
		bankrupted bool
		won        bool
		want       bool
	}{
		{"en juego", false, false, true},
		{"expulsado", true, false, false},
		{"ganador", false, true, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p := &PlayerState{IsBankrupted: tc.bankrupted, HasWon: tc.won}
			if got := p.IsEligible(); got != tc.want {
				t.Errorf("IsEligible = %v, se esperaba %v", got, tc.want)
			}
		})
	}
}

func TestActiveCardDismissed(t *testing.T) {
	ac := &ActiveCard{
		DismissedBy: []string{"u1"},
		PurchasedBy: []string{"u2"},
	}

	if !ac.Dismissed("u1") {
		t.Error("un jugador que descartó no figura como descartado")
	}
	if !ac.Dismissed("u2") {
		t.Error("un comprador cuenta como descartado para el retiro de la carta")
	}
	if ac.Dismissed("u3") {
		t.Error("un jugador pendiente figura como descartado")
	}
}

func TestRoomAllReady(t *testing.T) {
	room := &Room{Players: []RoomPlayer{{ID: "u1", Ready: true}}}
	if room.AllReady() {
		t.Error("AllReady = true con menos del mínimo de jugadores")
	}

	room.Players = append(room.Players, RoomPlayer{ID: "u2"})
	if room.AllReady() {
		t.Error("AllReady = true con un jugador sin confirmar")
	}

	room.Players[1].Ready = true
	if !room.AllReady() {
		t.Error("AllReady = false con todos confirmados")
	}
}
