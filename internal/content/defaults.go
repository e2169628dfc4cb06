package content

import "portfolio/internal/database"

// defaultProfile 返回首次访问时落库的默认文档。
func defaultProfile() database.Profile {
	return database.Profile{
		Name:        "Saïd Osias OUEDRAOGO",
		Title:       "Data Analyst · Développeur Data Python-SQL",
		Description: "Ingénieur en Génie Informatique spécialisé Data. Je transforme des données brutes en informations exploitables pour optimiser les processus.",
		Skills: mustJSON([]SkillCategory{
			{Category: "Langages", Items: []string{"Python", "SQL", "Java", "JavaScript"}},
			{Category: "Bases de données", Items: []string{"MySQL", "MongoDB"}},
			{Category: "Data & BI", Items: []string{"Pandas", "Power BI", "Anaconda"}},
			{Category: "Outils", Items: []string{"Git", "VS Code", "Laravel"}},
			{Category: "Systèmes", Items: []string{"Linux Ubuntu", "Linux Mint", "Windows"}},
			{Category: "Langues", Items: []string{"Français C1", "Anglais B1"}},
		}),
		Experiences: mustJSON([]Experience{
			{
				Title:       "Stage de perfectionnement",
				Company:     "SONAR",
				Location:    "Ouagadougou, Burkina Faso",
				Period:      "Fév 2025 – Mai 2025",
				Description: "Application Laravel full stack pour la gestion des bons d'achat.",
				Tech:        []string{"Laravel", "MySQL", "PHP"},
			},
			{
				Title:       "Stage de fin de cycle",
				Company:     "ONASER",
				Location:    "Ouagadougou, Burkina Faso",
				Period:      "Mar 2024 – Août 2024",
				Description: "Plateforme de suivi des missions en Java/MySQL.",
				Tech:        []string{"Java", "MySQL"},
			},
		}),
		Formations: mustJSON([]Formation{
			{
				Title:       "Prépa Mastère Digital",
				School:      "HETIC",
				Location:    "Montreuil, France",
				Period:      "Depuis Oct 2025",
				Description: "Développement web, analyse de données, marketing digital.",
			},
			{
				Title:       "Diplôme d'ingénieur en informatique",
				School:      "Université Aube Nouvelle",
				Location:    "Ouagadougou",
				Period:      "2021 – Déc 2024",
				Description: "Option technologie du génie informatique.",
			},
		}),
		Contacts: mustJSON([]Contact{
			{Label: "Email", Value: "ouedraogoosia4@gmail.com", Icon: "📧", URL: "mailto:ouedraogoosia4@gmail.com"},
			{Label: "Téléphone", Value: "+33 7 82 98 31 99", Icon: "📱", URL: "tel:+33782983199"},
			{Label: "LinkedIn", Value: "@Saïd Osias", Icon: "💼", URL: "https://linkedin.com/in/osiasodg"},
			{Label: "GitHub", Value: "@Osiasodg", Icon: "🐙", URL: "https://github.com/Osiasodg"},
		}),
	}
}
