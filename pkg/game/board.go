package game

import "github.com/backsoul/cashflow/pkg/models"

// Los tableros se definen en código y se reaplican al rehidratar una sala,
// de modo que las correcciones de diseño alcanzan partidas ya iniciadas.

// NewRatRaceBoard construye el tablero de 24 casillas de la carrera de la rata
func NewRatRaceBoard() []*models.BoardSquare {
	layout := []struct {
		category string
		title    string
	}{
		{models.SquarePayday, "Día de pago"},
		{models.SquareDeal, "Oportunidad"},
		{models.SquareMarket, "Mercado"},
		{models.SquareDeal, "Oportunidad"},
		{models.SquareExpense, "Gasto imprevisto"},
		{models.SquareDeal, "Oportunidad"},
		{models.SquareCharity, "Caridad"},
		{models.SquareDeal, "Oportunidad"},
		{models.SquarePayday, "Día de pago"},
		{models.SquareDeal, "Oportunidad"},
		{models.SquareMarket, "Mercado"},
		{models.SquareDeal, "Oportunidad"},
		{models.SquareExpense, "Gasto imprevisto"},
		{models.SquareDeal, "Oportunidad"},
		{models.SquareBaby, "Bebé"},
		{models.SquareDeal, "Oportunidad"},
		{models.SquarePayday, "Día de pago"},
		{models.SquareDeal, "Oportunidad"},
		{models.SquareMarket, "Mercado"},
		{models.SquareDeal, "Oportunidad"},
		{models.SquareExpense, "Gasto imprevisto"},
		{models.SquareDeal, "Oportunidad"},
		{models.SquareDownsized, "Despido"},
		{models.SquareDeal, "Oportunidad"},
	}

	board := make([]*models.BoardSquare, len(layout))
	for i, sq := range layout {
		board[i] = &models.BoardSquare{Index: i, Category: sq.category, Title: sq.title}
	}
	return board
}

// NewFastTrackBoard construye el tablero de 48 casillas de la pista rápida
func NewFastTrackBoard() []*models.BoardSquare {
	layout := []struct {
		category string
		title    string
		cost     int
		cashflow int
		lossKind string
	}{
		{models.SquarePayday, "Día de flujo", 0, 0, ""},                          // 0
		{models.SquareBusiness, "Cadena de pizzerías", 300000, 8000, ""},         // 1
		{models.SquareBusiness, "Centro de lavado de autos", 250000, 6500, ""},   // 2
		{models.SquareLoss, "Auditoría fiscal", 0, 0, models.LossAudit},          // 3
		{models.SquareBusiness, "Edificio de oficinas", 500000, 12000, ""},       // 4
		{models.SquareDream, "Velero en el Caribe", 150000, 0, ""},               // 5
		{models.SquarePayday, "Día de flujo", 0, 0, ""},                          // 6
		{models.SquareBusiness, "Franquicia de comida rápida", 400000, 10000, ""},// 7
		{models.SquareBusiness, "Viñedo familiar", 350000, 9000, ""},             // 8
		{models.SquareDream, "Safari fotográfico", 100000, 0, ""},                // 9
		{models.SquareStockExchange, "Bolsa de valores", 0, 0, ""},               // 10
		{models.SquareBusiness, "Estudio de grabación", 280000, 7000, ""},        // 11
		{models.SquarePayday, "Día de flujo", 0, 0, ""},                          // 12
		{models.SquareBusiness, "Torre de apartamentos", 600000, 15000, ""},      // 13
		{models.SquareDream, "Casa frente al mar", 200000, 0, ""},                // 14
		{models.SquareLoss, "Robo a la empresa", 0, 0, models.LossTheft},         // 15
		{models.SquareBusiness, "Red de gimnasios", 320000, 8500, ""},            // 16
		{models.SquareBusiness, "Planta recicladora", 450000, 11000, ""},         // 17
		{models.SquarePayday, "Día de flujo", 0, 0, ""},                          // 18
		{models.SquareDream, "Fundación benéfica propia", 250000, 0, ""},         // 19
		{models.SquareBusiness, "Cadena hotelera boutique", 700000, 18000, ""},   // 20
		{models.SquareLottery, "Lotería", 0, 0, ""},                              // 21
		{models.SquareBusiness, "Parque de food trucks", 180000, 5000, ""},       // 22
		{models.SquareBusiness, "Agencia de viajes", 220000, 6000, ""},           // 23
		{models.SquarePayday, "Día de flujo", 0, 0, ""},                          // 24
		{models.SquareBusiness, "Plataforma de cursos", 260000, 7500, ""},        // 25
		{models.SquareDream, "Vuelta al mundo en crucero", 180000, 0, ""},        // 26
		{models.SquareLoss, "Incendio en el almacén", 0, 0, models.LossFire},     // 27
		{models.SquareBusiness, "Cervecería artesanal", 380000, 9500, ""},        // 28
		{models.SquareBusiness, "Clínica dental", 420000, 10500, ""},             // 29
		{models.SquarePayday, "Día de flujo", 0, 0, ""},                          // 30
		{models.SquareDream, "Rancho ecuestre", 300000, 0, ""},                   // 31
		{models.SquareBusiness, "Centro comercial local", 800000, 20000, ""},     // 32
		{models.SquareLoss, "Divorcio costoso", 0, 0, models.LossDivorce},        // 33
		{models.SquareStockExchange, "Bolsa de valores", 0, 0, ""},               // 34
		{models.SquareBusiness, "Editorial independiente", 240000, 6500, ""},     // 35
		{models.SquarePayday, "Día de flujo", 0, 0, ""},                          // 36
		{models.SquareBusiness, "Granja solar", 550000, 14000, ""},               // 37
		{models.SquareDream, "Colección de autos clásicos", 350000, 0, ""},       // 38
		{models.SquareCharity, "Caridad", 0, 0, ""},                              // 39
		{models.SquareBusiness, "Cadena de cafeterías", 300000, 8000, ""},        // 40
		{models.SquareBusiness, "Estadio de fútbol local", 900000, 22000, ""},    // 41
		{models.SquarePayday, "Día de flujo", 0, 0, ""},                          // 42
		{models.SquareLoss, "Allanamiento y demanda", 0, 0, models.LossRaid},     // 43
		{models.SquareBusiness, "Desarrolladora de software", 480000, 12500, ""}, // 44
		{models.SquareLottery, "Lotería", 0, 0, ""},                              // 45
		{models.SquareDream, "Isla privada", 500000, 0, ""},                      // 46
		{models.SquareBusiness, "Aerolínea regional", 1000000, 25000, ""},        // 47
	}

	board := make([]*models.BoardSquare, len(layout))
	for i, sq := range layout {
		board[i] = &models.BoardSquare{
			Index:    i,
			Category: sq.category,
			Title:    sq.title,
			Cost:     sq.cost,
			Cashflow: sq.cashflow,
			LossKind: sq.lossKind,
		}
	}
	return board
}

// LotteryPool devuelve las casillas elegibles para la lotería. Las casillas
// de lotería quedan excluidas del grupo para que la resolución recursiva
// siempre termine.
func LotteryPool(board []*models.BoardSquare) []*models.BoardSquare {
	pool := make([]*models.BoardSquare, 0, len(board))
	for _, sq := range board {
		switch sq.Category {
		case models.SquareBusiness, models.SquareDream, models.SquareLoss, models.SquarePayday:
			pool = append(pool, sq)
		}
	}
	return pool
}
