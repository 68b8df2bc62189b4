package domain

// Customer — клиент магазина. Справочник клиентов ведётся внешней системой,
// ядро читает записи и никогда их не изменяет.
type Customer struct {
	ID       string
	Name     string
	Email    string
	Age      int32
	Location string
	Gender   string
}
