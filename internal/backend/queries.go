package backend

const (
	getChatsQuery = `query GetChats {
  chats(order_by: {updated_at: desc}) {
    id
    title
    updated_at
    messages(order_by: {created_at: desc}, limit: 1) {
      id
      content
      is_bot
      created_at
    }
  }
}`

	createChatMutation = `mutation CreateChat($title: String!) {
  insert_chats_one(object: {title: $title}) {
    id
    title
    updated_at
  }
}`

	deleteChatMutation = `mutation DeleteChat($id: uuid!) {
  delete_chats_by_pk(id: $id) {
    id
  }
}`

	getChatMessagesQuery = `query GetChatMessages($chatId: uuid!) {
  messages(where: {chat_id: {_eq: $chatId}}, order_by: {created_at: asc}) {
    id
    chat_id
    content
    is_bot
    created_at
  }
}`

	messagesSubscription = `subscription MessagesSubscription($chatId: uuid!) {
  messages(where: {chat_id: {_eq: $chatId}}, order_by: {created_at: asc}) {
    id
    chat_id
    content
    is_bot
    created_at
  }
}`

	sendMessageMutation = `mutation SendMessage($chatId: uuid!, $content: String!) {
  insert_messages_one(object: {chat_id: $chatId, content: $content, is_bot: false}) {
    id
    chat_id
    content
    is_bot
    created_at
  }
}`

	sendChatbotMessageMutation = `mutation SendChatbotMessage($chatId: uuid!, $message: String!) {
  sendMessage(chat_id: $chatId, message: $message) {
    success
  }
}`
)
