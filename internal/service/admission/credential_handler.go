package admission

import (
	"context"

	"github.com/google/uuid"

	park "skypark/domain"
	"skypark/internal/service/admission/domain"
)

// CredentialResolver 把入场凭证解析成游客（和可能的门票）。
// 入场链和离场流程共用这段解析逻辑。
type CredentialResolver struct {
	visitors park.VisitorRepository
	tickets  park.TicketRepository
}

func NewCredentialResolver(visitors park.VisitorRepository, tickets park.TicketRepository) *CredentialResolver {
	return &CredentialResolver{visitors: visitors, tickets: tickets}
}

// Resolve 按凭证种类解析。
// QR：值必须是合法的唯一标识（uuid），指向一张已售门票，进而定位游客。
// TAG：值是手环编码，只定位游客；具体用哪张票交给后续节点挑选。
func (r *CredentialResolver) Resolve(ctx context.Context, kind CredentialKind, value string) (*park.Visitor, *park.Ticket, error) {
	switch kind {
	case CredentialQR:
		if _, err := uuid.Parse(value); err != nil {
			return nil, nil, domain.ErrInvalidCredentialFormat
		}
		ticket, err := r.tickets.FindByQRCode(ctx, value)
		if err != nil {
			return nil, nil, err
		}
		if ticket == nil {
			return nil, nil, domain.ErrNoValidTicket
		}
		visitor, err := r.visitors.FindByID(ctx, ticket.VisitorID)
		if err != nil {
			return nil, nil, err
		}
		if visitor == nil {
			return nil, nil, domain.ErrNoValidTicket
		}
		return visitor, ticket, nil

	case CredentialTag:
		visitor, err := r.visitors.FindByTagCode(ctx, value)
		if err != nil {
			return nil, nil, err
		}
		if visitor == nil {
			return nil, nil, domain.ErrNoValidTicket
		}
		return visitor, nil, nil

	default:
		return nil, nil, domain.ErrInvalidEntryType
	}
}

// CredentialHandler 是链上的凭证解析环。
type CredentialHandler struct {
	NextHandler
	resolver *CredentialResolver
}

func NewCredentialHandler(resolver *CredentialResolver) *CredentialHandler {
	return &CredentialHandler{resolver: resolver}
}

func (h *CredentialHandler) Handle(ec *EntryContext) error {
	visitor, ticket, err := h.resolver.Resolve(ec.Ctx, ec.CredentialKind, ec.CredentialValue)
	if err != nil {
		return err
	}
	ec.Visitor = visitor
	ec.Ticket = ticket
	return h.executeNext(ec)
}
