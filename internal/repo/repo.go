package repo

const (
	OrdersCollection       = "orders"
	ChatMessagesCollection = "chat-messages"
)

// FileRepo holds the two independent collections behind the order and chat API.
type FileRepo struct {
	Orders       *Collection
	ChatMessages *Collection
}

func NewFileRepo(dir string) *FileRepo {
	return &FileRepo{
		Orders:       NewCollection(dir, OrdersCollection),
		ChatMessages: NewCollection(dir, ChatMessagesCollection),
	}
}
