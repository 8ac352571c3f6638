package db

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// SeedDemo loads the demo hierarchy (two contracts, two appendices, four
// lines, six products) when the store is empty. Meant for local development
// behind SEED_DEMO_DATA.
func SeedDemo(db *gorm.DB, log zerolog.Logger) error {
	var count int64
	if err := db.Raw(`SELECT COUNT(*) FROM contracts`).Scan(&count).Error; err != nil {
		return fmt.Errorf("seed: count contracts: %w", err)
	}
	if count > 0 {
		return nil
	}

	clientWest := uuid.New()
	clientSouth := uuid.New()

	mower := uuid.New()
	trimmer := uuid.New()
	drill := uuid.New()
	saw := uuid.New()
	washer := uuid.New()
	vacuum := uuid.New()

	mainContract := uuid.New()
	draftContract := uuid.New()
	gardenAppendix := uuid.New()
	diyAppendix := uuid.New()

	return db.Transaction(func(tx *gorm.DB) error {
		clients := []struct {
			id   uuid.UUID
			name string
		}{
			{clientWest, "Asilva Distribution Ouest"},
			{clientSouth, "Asilva Distribution Sud"},
		}
		for _, client := range clients {
			if err := tx.Exec(`INSERT INTO clients (id, name) VALUES (?, ?)`, client.id, client.name).Error; err != nil {
				return err
			}
		}

		products := []struct {
			id   uuid.UUID
			name string
		}{
			{mower, "Tondeuse electrique AX14"},
			{trimmer, "Taille-haies ProCut"},
			{drill, "Perceuse sans fil XR20"},
			{saw, "Scie circulaire TurboCut"},
			{washer, "Nettoyeur haute pression AquaJet"},
			{vacuum, "Aspirateur atelier MaxiVac"},
		}
		for _, product := range products {
			if err := tx.Exec(`INSERT INTO products (id, name) VALUES (?, ?)`, product.id, product.name).Error; err != nil {
				return err
			}
		}

		if err := tx.Exec(`
			INSERT INTO contracts (id, client_id, reference, status, start_date, end_date, billing_rate_percent, billing_base, currency, notes)
			VALUES (?, ?, 'SAV-2024', 'active', '2024-01-01', '2026-12-31', 6.0, 'purchase_cost', 'EUR', 'Contrat principal Europe Ouest.')
		`, mainContract, clientWest).Error; err != nil {
			return err
		}
		if err := tx.Exec(`
			INSERT INTO contracts (id, client_id, reference, status, start_date, end_date, billing_rate_percent, billing_base, currency, notes)
			VALUES (?, ?, 'SAV-2025', 'draft', '2025-01-01', '2027-12-31', 5.5, 'purchase_cost', 'EUR', 'Contrat en cours de negociation.')
		`, draftContract, clientSouth).Error; err != nil {
			return err
		}

		if err := tx.Exec(`
			INSERT INTO appendices (id, contract_id, name, code, status, start_date, end_date, description)
			VALUES (?, ?, 'Gamme Jardin 2024', 'GJ-2024', 'active', '2024-01-01', '2025-12-31', 'Produits jardinage saison 2024/2025.')
		`, gardenAppendix, mainContract).Error; err != nil {
			return err
		}
		if err := tx.Exec(`
			INSERT INTO appendices (id, contract_id, name, code, status, start_date, end_date, description)
			VALUES (?, ?, 'Gamme Bricolage 2024', 'GB-2024', 'active', '2024-01-01', '2026-06-30', 'Produits bricolage pour grandes surfaces.')
		`, diyAppendix, mainContract).Error; err != nil {
			return err
		}

		lines := []struct {
			appendix  uuid.UUID
			product   uuid.UUID
			endDate   string
			serialReq bool
			pattern   string
			rule      string
			months    int
			proofReq  bool
			countries string
			channels  string
			flags     [6]bool // repair_station, parts_shipment, refund, replacement, paid_repair, parts_sale
		}{
			{gardenAppendix, mower, "2025-12-31", true, `^SAV-\d{4}-\d{3}$`, "purchase_date", 24, true, "FR,BE,ES", "retail,online",
				[6]bool{true, true, false, true, true, true}},
			{gardenAppendix, trimmer, "2025-12-31", false, "", "activation_date", 18, false, "", "",
				[6]bool{true, false, true, false, true, false}},
			{diyAppendix, drill, "2026-06-30", true, `^[A-Z]{2}-\d{6}$`, "manufacture_date", 36, true, "FR,DE", "retail",
				[6]bool{true, true, false, true, false, true}},
			{diyAppendix, saw, "2026-06-30", false, "", "purchase_date", 12, true, "FR", "online",
				[6]bool{false, true, true, false, true, true}},
		}
		for _, line := range lines {
			if err := tx.Exec(`
				INSERT INTO contract_lines (
					id, appendix_id, product_id, status, start_date, end_date,
					serial_required, serial_pattern, warranty_start_rule, warranty_months, proof_required,
					allowed_countries, allowed_channels,
					allow_repair_station, allow_parts_shipment, allow_refund,
					allow_replacement, allow_paid_repair, allow_parts_sale
				) VALUES (?, ?, ?, 'active', '2024-01-01', ?, ?, NULLIF(?, ''), ?::warranty_start_rule, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			`,
				uuid.New(), line.appendix, line.product, line.endDate,
				line.serialReq, line.pattern, line.rule, line.months, line.proofReq,
				line.countries, line.channels,
				line.flags[0], line.flags[1], line.flags[2], line.flags[3], line.flags[4], line.flags[5],
			).Error; err != nil {
				return err
			}
		}

		log.Info().Msg("demo hierarchy seeded")
		return nil
	})
}
