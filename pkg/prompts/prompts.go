// Package prompts holds the prompt templates sent to the external
// reasoning capability. The corpus and its users are Vietnamese, so the
// prompts are too.
package prompts

import "fmt"

const selectNodesTemplate = `Bạn là hệ thống truy xuất thông tin cho tài liệu quy định nội bộ.

Dưới đây là cấu trúc phân cấp (dạng cây) của các tài liệu, đã lược bỏ nội dung chi tiết:

%s

Câu hỏi của người dùng: "%s"

Hãy chọn tối đa 3 nút (node) trong cây có khả năng chứa câu trả lời nhất.

Trả về DUY NHẤT một mảng JSON, không giải thích gì thêm, theo đúng định dạng:
[
  {"doc_id": "...", "node_id": "...", "relevance": "high"}
]

Quy tắc:
- "doc_id" và "node_id" phải lấy nguyên văn từ cấu trúc ở trên.
- "relevance" chỉ nhận giá trị "high" hoặc "medium".
- Nếu không có nút nào phù hợp, trả về mảng rỗng [].`

// SelectNodes renders the node-selection prompt for one query over the
// compact tree view.
func SelectNodes(compactView, query string) string {
	return fmt.Sprintf(selectNodesTemplate, compactView, query)
}
