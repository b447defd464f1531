package services

import (
	"github.com/microgestion/gestion-api/models"
)

// Le TTC des charges projetées est calculé avec un taux fixe de 20%,
// indépendamment du taux configuré par l'utilisateur (comportement historique).
const chargeTTCFactor = 1.2

// CalculateRecurringCharges projette une liste de charges sur une année ou
// sur un couple année+mois. Chaque charge est évaluée indépendamment :
//
//   - récurrente mensuelle, fenêtre mensuelle : incluse si son année ET son
//     mois d'origine sont antérieurs ou égaux à la cible ; le multiplicateur
//     est le nombre de mois écoulés, origine incluse.
//   - récurrente mensuelle, fenêtre annuelle : incluse uniquement si elle
//     est née dans l'année cible, multiplicateur 12.
//   - récurrente annuelle : incluse si son année d'origine est <= l'année
//     cible, une occurrence par année écoulée (origine incluse).
//   - ponctuelle : correspondance exacte du mois (fenêtre mensuelle) ou de
//     l'année (fenêtre annuelle), multiplicateur 1.
//
// Une charge marquée récurrente avec un type hors monthly/yearly ne
// correspond à aucune branche et disparaît du résultat.
//
// L'ordre de sortie suit l'ordre d'entrée. Aucune erreur possible.
func CalculateRecurringCharges(charges []models.Charge, year int, month *int) []models.CalculatedCharge {
	result := make([]models.CalculatedCharge, 0, len(charges))

	for _, charge := range charges {
		chargeYear := charge.ExpenseDate.Year()
		chargeMonth := int(charge.ExpenseDate.Month())

		var amount float64
		if charge.Amount != nil {
			amount = *charge.Amount
		}

		switch {
		case charge.Recurring && charge.RecurringType == models.RecurringMonthly:
			if month != nil {
				// NOTE: la comparaison chargeMonth <= month ignore l'écart
				// d'années ; une charge née en novembre 2023 est exclue d'une
				// projection juin 2024. Comportement historique, conservé.
				if chargeYear <= year && chargeMonth <= *month {
					multiplier := (year-chargeYear)*12 + (*month - chargeMonth) + 1
					if multiplier < 1 {
						multiplier = 1
					}
					result = append(result, calculated(charge, amount, multiplier, models.RecurringMonthly))
				}
			} else if chargeYear == year {
				result = append(result, calculated(charge, amount, 12, models.RecurringMonthly))
			}

		case charge.Recurring && charge.RecurringType == models.RecurringYearly:
			if chargeYear <= year {
				multiplier := year - chargeYear + 1
				result = append(result, calculated(charge, amount, multiplier, models.RecurringYearly))
			}

		case !charge.Recurring:
			if month != nil {
				if chargeYear == year && chargeMonth == *month {
					result = append(result, calculated(charge, amount, 1, "one-time"))
				}
			} else if chargeYear == year {
				result = append(result, calculated(charge, amount, 1, "one-time"))
			}
		}
	}

	return result
}

func calculated(charge models.Charge, amount float64, multiplier int, period string) models.CalculatedCharge {
	ht := amount * float64(multiplier)
	return models.CalculatedCharge{
		Charge:              charge,
		CalculatedAmountHt:  ht,
		CalculatedAmountTtc: ht * chargeTTCFactor,
		IsRecurring:         charge.Recurring,
		RecurringPeriod:     period,
	}
}

// GetTotalCharges projette les charges puis agrège les montants HT, avec une
// ventilation récurrent / ponctuel. TotalTtc reprend le total HT (comportement
// historique, voir CalculateRecurringCharges pour le TTC par charge).
func GetTotalCharges(charges []models.Charge, year int, month *int) models.ChargeTotals {
	var totals models.ChargeTotals

	for _, cc := range CalculateRecurringCharges(charges, year, month) {
		totals.TotalHt += cc.CalculatedAmountHt
		if cc.IsRecurring {
			totals.Breakdown.Recurring += cc.CalculatedAmountHt
		} else {
			totals.Breakdown.OneTime += cc.CalculatedAmountHt
		}
	}

	totals.TotalTtc = totals.TotalHt
	return totals
}
