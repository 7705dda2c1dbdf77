// Package demo genera los datos de muestra que se muestran cuando una tabla
// no existe o el warehouse no responde.
package demo

import (
	"fmt"

	"github.com/dropDatabas3/datagate/internal/warehouse"
)

// TableNames son las tablas de demo que se listan cuando el warehouse no devuelve nada.
var TableNames = []string{"demo_table_1", "demo_table_2", "demo_table_3"}

// Data devuelve la tabla de demo para name. demo_table_1 y demo_table_2 tienen
// datos propios; cualquier otro nombre devuelve el set de hospitales.
func Data(name string) *warehouse.Table {
	switch name {
	case "demo_table_1":
		return patients()
	case "demo_table_2":
		return doctors()
	default:
		return hospitals()
	}
}

func patients() *warehouse.Table {
	t := &warehouse.Table{Columns: []string{"patient_id", "name", "age", "condition"}}
	for i := 0; i < 10; i++ {
		cond := "Stable"
		switch {
		case i >= 8:
			cond = "Recovering"
		case i >= 5:
			cond = "Critical"
		}
		t.Rows = append(t.Rows, []any{i + 1, fmt.Sprintf("Patient %d", i+1), 20 + i*3, cond})
	}
	return t
}

func doctors() *warehouse.Table {
	specialties := []string{"Cardiology", "Neurology", "Pediatrics", "Oncology", "Emergency"}
	patients := []int{15, 22, 18, 10, 30}
	t := &warehouse.Table{Columns: []string{"doctor_id", "name", "specialty", "patients"}}
	for i := range specialties {
		t.Rows = append(t.Rows, []any{i + 1, fmt.Sprintf("Dr. %c", 'A'+i), specialties[i], patients[i]})
	}
	return t
}

func hospitals() *warehouse.Table {
	return &warehouse.Table{
		Columns: []string{"hospital_id", "name", "beds", "occupancy_rate"},
		Rows: [][]any{
			{1, "General Hospital", 250, 0.85},
			{2, "Medical Center", 180, 0.72},
			{3, "Children's Hospital", 120, 0.64},
		},
	}
}
