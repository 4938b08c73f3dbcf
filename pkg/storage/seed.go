package storage

import (
	"context"
	"fmt"
	"time"
)

// Seed loads a small demonstration dataset so the service is searchable
// out of the box. It is idempotent per invocation only in the sense that
// callers are expected to seed a fresh database; rows are plain inserts.
func (s *Store) Seed(ctx context.Context) error {
	studies := []struct {
		title, description, status, phase, condition, drug, institution string
		participants                                                    int
		score                                                           float64
	}{
		{"Pembrolizumab in Advanced Lung Cancer", "Phase III trial of pembrolizumab for non-small cell lung cancer.", "Recruiting", "Phase III", "Lung Cancer", "Pembrolizumab", "St. Mary Oncology Center", 420, 2.4},
		{"CAR-T Therapy for Refractory Leukemia", "Evaluating CAR-T cell therapy in relapsed acute lymphoblastic leukemia.", "Recruiting", "Phase II", "Leukemia", "Tisagenlecleucel", "University Hospital Leuven", 85, 2.1},
		{"Metformin and Breast Cancer Recurrence", "Observational study of metformin use and breast cancer recurrence rates.", "Active", "Phase IV", "Breast Cancer", "Metformin", "Karolinska Institute", 1200, 1.8},
		{"Statin Therapy in Cardiovascular Prevention", "Long term outcomes of high-intensity statin therapy.", "Completed", "Phase IV", "Cardiovascular Disease", "Atorvastatin", "Cleveland Clinic", 3400, 1.2},
		{"Semaglutide for Type 2 Diabetes", "Dose escalation study of weekly semaglutide.", "Recruiting", "Phase III", "Type 2 Diabetes", "Semaglutide", "Steno Diabetes Center", 650, 1.6},
		{"Nivolumab Combination in Melanoma", "Nivolumab plus ipilimumab in unresectable melanoma.", "Not yet recruiting", "Phase I", "Melanoma", "Nivolumab", "Netherlands Cancer Institute", 48, 2.0},
		{"Cognitive Training in Early Alzheimer", "Digital cognitive training for mild cognitive impairment.", "Recruiting", "Phase II", "Alzheimer Disease", "", "Max Planck Institute", 210, 1.1},
		{"Gene Therapy for Sickle Cell Disease", "Single-arm study of lentiviral gene therapy.", "Active", "Phase I", "Sickle Cell Disease", "LentiGlobin", "Boston Children's Hospital", 30, 1.9},
	}

	for _, st := range studies {
		res, err := s.db.ExecContext(ctx, `
			INSERT INTO clinical_studies
				(title, description, status, phase, condition, drug, institution, participant_count, start_date, relevance_score)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			st.title, st.description, st.status, st.phase, st.condition, st.drug,
			st.institution, st.participants, time.Now().UTC().Format(time.RFC3339), st.score)
		if err != nil {
			return fmt.Errorf("seeding clinical study %q: %w", st.title, err)
		}

		studyID, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("reading study id: %w", err)
		}

		_, err = s.db.ExecContext(ctx, `
			INSERT INTO data_products (study_id, title, description, type, format, size, access_level)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			studyID, st.title+" dataset", "De-identified participant level data.", "Dataset", "CSV", "1.2 GB", "Restricted")
		if err != nil {
			return fmt.Errorf("seeding data product for study %d: %w", studyID, err)
		}
	}

	papers := []struct {
		title, abstract, authors, journal, doi, keywords string
		daysAgo, citations                               int
	}{
		{"Immune checkpoint inhibition in solid tumors", "A review of checkpoint inhibitor efficacy across solid tumor types.", `["A. Moreno","K. Tanaka"]`, "Nature Medicine", "10.1000/nm.2024.101", `["immunotherapy","oncology"]`, 20, 340},
		{"Deep learning for radiology triage", "Convolutional models for prioritizing radiology worklists.", `["S. Okafor"]`, "The Lancet Digital Health", "10.1000/ldh.2024.77", `["deep learning","radiology"]`, 90, 45},
		{"Gut microbiome and metabolic syndrome", "Cohort analysis linking microbiome composition to metabolic markers.", `["L. Fischer","M. Duval","P. Singh"]`, "Cell Metabolism", "10.1000/cm.2023.55", `["microbiome","metabolism"]`, 400, 120},
		{"CRISPR base editing safety profile", "Off-target analysis of adenine base editors in primary cells.", `["R.'t Hart"]`, "Science", "10.1000/sci.2024.12", `["CRISPR","gene editing"]`, 5, 8},
		{"Long COVID symptom trajectories", "Two-year follow-up of post-acute COVID-19 symptom clusters.", `["E. Novak","J. Iversen"]`, "BMJ", "10.1000/bmj.2023.88", `["COVID-19","epidemiology"]`, 200, 76},
	}

	for _, p := range papers {
		pubDate := time.Now().UTC().AddDate(0, 0, -p.daysAgo).Format(time.RFC3339)
		_, err := s.db.ExecContext(ctx, `
			INSERT INTO scientific_papers
				(title, abstract, authors, journal, doi, publication_date, keywords, citation_count)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			p.title, p.abstract, p.authors, p.journal, p.doi, pubDate, p.keywords, p.citations)
		if err != nil {
			return fmt.Errorf("seeding paper %q: %w", p.title, err)
		}
	}

	domains := []struct {
		name, description, owner, format string
	}{
		{"oncology_registry", "Tumor registry records with staging and treatment outcomes.", "Oncology Data Office", "CSV"},
		{"lab_results", "Harmonized laboratory results across participating sites.", "Clinical Informatics", "JSON"},
		{"imaging_metadata", "DICOM study metadata for the imaging archive.", "Radiology IT", "XML"},
		{"genomics_variants", "Annotated variant calls from the sequencing core.", "Genomics Core", "JSON"},
	}

	for _, d := range domains {
		_, err := s.db.ExecContext(ctx, `
			INSERT INTO data_domains (domain_name, description, owner, data_format)
			VALUES (?, ?, ?, ?)`,
			d.name, d.description, d.owner, d.format)
		if err != nil {
			return fmt.Errorf("seeding data domain %q: %w", d.name, err)
		}
	}

	return nil
}
