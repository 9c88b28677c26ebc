package jobs

// DefaultSeed returns the sample vacancies inserted into an empty store.
func DefaultSeed() []Record {
	return []Record{
		{
			Title:        "Desenvolvedor Java Pleno",
			Company:      "Tech Solutions",
			Location:     "São Paulo, SP - Híbrido",
			Requirements: "Java 11+, Spring Boot, REST, SQL",
		},
		{
			Title:        "Frontend React Developer",
			Company:      "UI Labs",
			Location:     "Remoto",
			Requirements: "React, TypeScript, Tailwind/DaisyUI, testes",
		},
		{
			Title:        "Analista de Dados Jr.",
			Company:      "DataCorp",
			Location:     "Campinas, SP - Presencial",
			Requirements: "SQL, Python, ETL básicos, Power BI",
		},
	}
}
