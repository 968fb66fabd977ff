package chat

// chatPromptTemplate 问答提示词。第一个占位符为原始问题，
// 第二个为 "\n- " 连接的上下文条目。
const chatPromptTemplate = `You are a professional Q&A assistant. Please answer the original question:
%s

The context information is:
%s

Answer requirements:
1. Accurately answer based on the provided context information
2. If there is no direct answer in the context, state that honestly
3. Keep the answer concise and relevant
4. Expand explanations appropriately if necessary


RESPONSE:`
