package models

// Asset es una posesión de un jugador (inmueble, negocio, acciones o una
// casilla de la pista rápida)
type Asset struct {
	ID          string `json:"id"`
	Type        string `json:"type"`
	Title       string `json:"title"`
	Cost        int    `json:"cost"`
	Cashflow    int    `json:"cashflow"`
	Quantity    int    `json:"quantity,omitempty"` // Solo acciones
	AvgCost     int    `json:"avgCost,omitempty"`  // Costo promedio ponderado por acción
	Symbol      string `json:"symbol,omitempty"`
	Deck        string `json:"deck,omitempty"` // Mazo de origen, para devolver la carta al vender
	TemplateID  int    `json:"templateId,omitempty"`
	SquareIndex int    `json:"squareIndex,omitempty"` // Casillas de la pista rápida
}

// Liability es una deuda con su costo de servicio mensual
type Liability struct {
	Name    string `json:"name"`
	Amount  int    `json:"amount"`
	Payment int    `json:"payment"`
}

// PlayerState contiene las finanzas y la posición de un jugador en la partida
type PlayerState struct {
	SessionID     string     `json:"sessionId,omitempty"`
	UserID        string     `json:"userId"`
	Name          string     `json:"name"`
	Profession    string     `json:"profession"`
	StartFinances Profession `json:"startFinances"` // Respaldo para la recuperación de bancarrota

	Cash          int `json:"cash"`
	Salary        int `json:"salary"`
	Expenses      int `json:"expenses"`
	PassiveIncome int `json:"passiveIncome"`

	Assets      []Asset     `json:"assets"`
	Liabilities []Liability `json:"liabilities"`
	LoanDebt    int         `json:"loanDebt"`

	Position    int  `json:"position"`
	IsFastTrack bool `json:"isFastTrack"`

	ChildrenCount int `json:"childrenCount"`
	SkippedTurns  int `json:"skippedTurns"`
	CharityTurns  int `json:"charityTurns"`

	IsBankrupted    bool    `json:"isBankrupted"`
	HasWon          bool    `json:"hasWon"`
	LoanLimitFactor float64 `json:"loanLimitFactor"`

	DreamSquare       int `json:"dreamSquare,omitempty"`       // Casilla de sueño elegida al entrar a la pista rápida
	FastTrackBaseline int `json:"fastTrackBaseline,omitempty"` // Ingreso pasivo al momento de entrar
}

// NewPlayerState crea el estado inicial de un jugador con las finanzas de
// su profesión
func NewPlayerState(userID, name string, profession Profession) *PlayerState {
	return &PlayerState{
		UserID:          userID,
		Name:            name,
		Profession:      profession.Name,
		StartFinances:   profession,
		Cash:            profession.Cash,
		Salary:          profession.Salary,
		Expenses:        profession.Expenses,
		Assets:          []Asset{},
		Liabilities:     []Liability{},
		LoanLimitFactor: 1.0,
	}
}

// TotalIncome suma salario e ingreso pasivo
func (p *PlayerState) TotalIncome() int {
	return p.Salary + p.PassiveIncome
}

// NetCashflow es el flujo mensual neto: ingresos menos gastos
func (p *PlayerState) NetCashflow() int {
	return p.TotalIncome() - p.Expenses
}

// PassiveGain es el crecimiento del ingreso pasivo desde que entró a la
// pista rápida
func (p *PlayerState) PassiveGain() int {
	if !p.IsFastTrack {
		return 0
	}
	return p.PassiveIncome - p.FastTrackBaseline
}

// IsEligible indica si el jugador puede recibir turnos en la rotación
func (p *PlayerState) IsEligible() bool {
	return !p.IsBankrupted && !p.HasWon
}

// FindAsset busca una posesión por ID
func (p *PlayerState) FindAsset(assetID string) *Asset {
	for i := range p.Assets {
		if p.Assets[i].ID == assetID {
			return &p.Assets[i]
		}
	}
	return nil
}

// FindStock busca una posición accionaria por símbolo
func (p *PlayerState) FindStock(symbol string) *Asset {
	for i := range p.Assets {
		if p.Assets[i].Type == CardStock && p.Assets[i].Symbol == symbol {
			return &p.Assets[i]
		}
	}
	return nil
}

// RemoveAsset elimina una posesión por ID y la devuelve
func (p *PlayerState) RemoveAsset(assetID string) *Asset {
	for i := range p.Assets {
		if p.Assets[i].ID == assetID {
			removed := p.Assets[i]
			p.Assets = append(p.Assets[:i], p.Assets[i+1:]...)
			return &removed
		}
	}
	return nil
}

// RemoveLiability elimina una deuda por nombre y resta su pago mensual
func (p *PlayerState) RemoveLiability(name string) *Liability {
	for i := range p.Liabilities {
		if p.Liabilities[i].Name == name {
			removed := p.Liabilities[i]
			p.Liabilities = append(p.Liabilities[:i], p.Liabilities[i+1:]...)
			return &removed
		}
	}
	return nil
}
